package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Stock       int             `gorm:"not null" json:"stock"`
	Active      bool            `gorm:"not null;index" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductFilter struct {
	Query    string
	Category string
	Active   *bool
	LowStock bool
	Page     int
	PageSize int
}

type StockMovementKind string

const (
	StockMovementSale       StockMovementKind = "sale"
	StockMovementReversal   StockMovementKind = "reversal"
	StockMovementAdjustment StockMovementKind = "adjustment"
)

// StockMovement registra cada alteração de estoque. Quantity positiva é entrada, negativa é saída.
type StockMovement struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	ProductID uint              `gorm:"not null;index" json:"product_id"`
	SaleID    *uint             `gorm:"index" json:"sale_id,omitempty"`
	Kind      StockMovementKind `gorm:"type:varchar(20);not null" json:"kind"`
	Quantity  int               `gorm:"not null" json:"quantity"`
	CreatedAt time.Time         `json:"created_at"`
}
