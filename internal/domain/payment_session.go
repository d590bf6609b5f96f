package domain

import "time"

const (
	SessionStatusPending    = "pending"
	SessionStatusProcessing = "processing"
	SessionStatusFailed     = "failed"
	SessionStatusSucceeded  = "succeeded"
)

// PaymentSession tracks one gateway round-trip for a payment. Its id is
// generated by the orchestrator before the gateway call so it can serve as
// the conversation id, and it never changes afterwards.
type PaymentSession struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	PaymentID    int64     `gorm:"index" json:"payment_id,string"`
	ProviderID   string    `gorm:"size:128" json:"provider_id"`
	Status       string    `gorm:"size:16;index" json:"status"`
	ErrorMessage string    `gorm:"size:512" json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName Specify table name
func (PaymentSession) TableName() string {
	return "payment_sessions"
}

// Terminal reports whether the session reached a final state. Terminal
// sessions never transition again.
func (s *PaymentSession) Terminal() bool {
	return s.Status == SessionStatusSucceeded || s.Status == SessionStatusFailed
}
