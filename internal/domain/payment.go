package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

const (
	CurrencyTRY = "TRY"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

const MethodIyzico = "iyzico"

// Payment is a checkout attempt by a client. The orchestrator is the only
// writer of PaymentStatus; Total is always computed server-side from the
// product rows at creation time.
type Payment struct {
	ID                int64           `json:"id,string" form:"id"`
	ClientName        string          `gorm:"size:200" json:"client_name" form:"client_name"`
	ClientEmail       string          `gorm:"size:200" json:"client_email" form:"client_email"`
	ClientPhone       string          `gorm:"size:32;index" json:"client_phone" form:"client_phone"`
	Country           string          `gorm:"size:8" json:"country" form:"country"`
	ProductIDs        []int64         `gorm:"serializer:json;type:jsonb" json:"product_ids"`
	ContributionTypes []string        `gorm:"serializer:json;type:jsonb" json:"contribution_types"`
	Method            string          `gorm:"size:32" json:"method"`
	PaymentStatus     string          `gorm:"size:16;index" json:"payment_status"`
	ProviderID        string          `gorm:"size:128" json:"provider_id"`
	Total             decimal.Decimal `gorm:"type:numeric(12,2)" json:"total"`
	Currency          string          `gorm:"size:8" json:"currency"`
	Message           string          `gorm:"size:1024" json:"message"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Payment) TableName() string {
	return "payments"
}
