package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product categories double as contribution types on a payment.
const (
	CategoryCamel           = "camel"
	CategorySheep           = "sheep"
	CategoryCow             = "cow"
	CategoryFoodSupplements = "food_supplements"
	CategoryMeal            = "meal"
)

const (
	HealthExcellent = "excellent"
	HealthGood      = "good"
	HealthFair      = "fair"
	HealthPoor      = "poor"
)

var ProductCategories = []string{
	CategoryCamel, CategorySheep, CategoryCow, CategoryFoodSupplements, CategoryMeal,
}

// ValidCategory reports whether v is a known product category.
func ValidCategory(v string) bool {
	for _, c := range ProductCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Product is a catalog item. Rows referenced by a payment are treated as
// immutable snapshots; the catalog API may still update unreferenced fields.
type Product struct {
	ID           int64           `json:"id,string" form:"id"`
	Title        string          `gorm:"index" json:"title" form:"title"`
	Description  string          `gorm:"size:1024" json:"description" form:"description"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2)" json:"price" form:"price"`
	Category     string          `gorm:"size:32;index" json:"category" form:"category"`
	Age          int             `json:"age" form:"age"`
	HealthStatus string          `gorm:"size:16" json:"health_status" form:"health_status"`
	ImageURL     string          `gorm:"size:1024" json:"image_url" form:"image_url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
