package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

func (s InstallmentStatus) Valid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusOverdue:
		return true
	}
	return false
}

type Installment struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	SaleID       uint              `gorm:"not null;uniqueIndex:idx_installments_sale_number" json:"sale_id"`
	Sale         *Sale             `json:"sale,omitempty"`
	Number       int               `gorm:"not null;uniqueIndex:idx_installments_sale_number" json:"number"`
	Amount       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate      time.Time         `gorm:"type:date;not null;index" json:"due_date"`
	PaymentDate  *time.Time        `gorm:"type:date" json:"payment_date,omitempty"`
	Status       InstallmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes        string            `gorm:"type:text" json:"notes"`
	PaymentNotes string            `gorm:"type:text" json:"payment_notes"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// IsOverdue indica parcela pendente com vencimento anterior ao dia de hoje.
func (i *Installment) IsOverdue(today time.Time) bool {
	if i.Status == InstallmentStatusOverdue {
		return true
	}
	return i.Status == InstallmentStatusPending && i.DueDate.Before(DateOnly(today))
}

type DueWindow string

const (
	DueWindowOverdue   DueWindow = "overdue"
	DueWindowToday     DueWindow = "today"
	DueWindowNext7Days DueWindow = "next_7_days"
)

func (w DueWindow) Valid() bool {
	switch w {
	case DueWindowOverdue, DueWindowToday, DueWindowNext7Days:
		return true
	}
	return false
}

type InstallmentFilter struct {
	Query    string
	Status   InstallmentStatus
	Window   DueWindow
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type InstallmentStats struct {
	TotalPending decimal.Decimal `json:"total_pending"`
	TotalOverdue decimal.Decimal `json:"total_overdue"`
	DueToday     int64           `json:"due_today"`
}
