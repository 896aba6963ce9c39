package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusPaid      SaleStatus = "paid"
	SaleStatusCancelled SaleStatus = "cancelled"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusPaid, SaleStatusCancelled:
		return true
	}
	return false
}

type Sale struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CustomerID   uint            `gorm:"not null;index" json:"customer_id"`
	Customer     *Customer       `json:"customer,omitempty"`
	UserID       *uint           `gorm:"index" json:"user_id,omitempty"`
	SaleDate     time.Time       `gorm:"type:date;not null;index" json:"sale_date"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Discount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	FinalValue   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_value"`
	Status       SaleStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes        string          `gorm:"type:text" json:"notes"`
	Items        []SaleItem      `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Installments []Installment   `gorm:"constraint:OnDelete:CASCADE" json:"installments,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

// ScheduleStatus deriva o status da venda das parcelas carregadas: todas pagas resulta em
// paid, qualquer outra combinação em pending. ok é falso para venda sem parcelas.
func (s *Sale) ScheduleStatus() (status SaleStatus, ok bool) {
	if len(s.Installments) == 0 {
		return "", false
	}
	for _, i := range s.Installments {
		if i.Status != InstallmentStatusPaid {
			return SaleStatusPending, true
		}
	}
	return SaleStatusPaid, true
}

// StockLines devolve as linhas de estoque de uma venda, na ordem dos itens.
func (s *Sale) StockLines() []StockLine {
	lines := make([]StockLine, 0, len(s.Items))
	for _, it := range s.Items {
		lines = append(lines, StockLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

type StockLine struct {
	ProductID uint
	Quantity  int
}

type SaleFilter struct {
	Query    string
	Status   SaleStatus
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
