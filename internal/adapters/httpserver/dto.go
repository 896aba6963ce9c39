package httpserver

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendafacil/vendafacil/internal/domain"
	"github.com/vendafacil/vendafacil/internal/usecase"
)

const dateLayout = "2006-01-02"

// Date aceita "2006-01-02" ou RFC3339 e guarda apenas o dia civil.
type Date struct{ time.Time }

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}, domain.NewValidationError("", domain.ErrInvalidDate)
		}
	}
	return domain.DateOnly(t), nil
}

type saleItemRequest struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type installmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate Date            `json:"due_date"`
}

type createSaleRequest struct {
	CustomerID       uint                 `json:"customer_id"`
	SaleDate         Date                 `json:"sale_date"`
	Discount         decimal.Decimal      `json:"discount"`
	Notes            string               `json:"notes"`
	Items            []saleItemRequest    `json:"items"`
	Installments     []installmentRequest `json:"installments"`
	InstallmentCount int                  `json:"installment_count"`
}

func (r createSaleRequest) input(userID *uint) usecase.CreateSaleInput {
	in := usecase.CreateSaleInput{
		CustomerID:       r.CustomerID,
		UserID:           userID,
		SaleDate:         r.SaleDate.Time,
		Discount:         r.Discount,
		Notes:            r.Notes,
		InstallmentCount: r.InstallmentCount,
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, usecase.SaleItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	for _, inst := range r.Installments {
		in.Installments = append(in.Installments, usecase.ManualInstallment{Amount: inst.Amount, DueDate: inst.DueDate.Time})
	}
	return in
}

type updateSaleRequest struct {
	CustomerID uint              `json:"customer_id"`
	SaleDate   Date              `json:"sale_date"`
	Discount   decimal.Decimal   `json:"discount"`
	Notes      string            `json:"notes"`
	Status     domain.SaleStatus `json:"status"`
}

func (r updateSaleRequest) input() usecase.UpdateSaleInput {
	return usecase.UpdateSaleInput{
		CustomerID: r.CustomerID,
		SaleDate:   r.SaleDate.Time,
		Discount:   r.Discount,
		Notes:      r.Notes,
		Status:     r.Status,
	}
}

type payRequest struct {
	PaymentDate Date   `json:"payment_date"`
	Notes       string `json:"notes"`
}

type updateInstallmentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	DueDate      Date            `json:"due_date"`
	PaymentNotes string          `json:"payment_notes"`
}

type page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

type installmentPage struct {
	page[domain.Installment]
	Stats domain.InstallmentStats `json:"stats"`
}

type errorBody struct {
	Error     string           `json:"error"`
	Field     string           `json:"field,omitempty"`
	ProductID uint             `json:"product_id,omitempty"`
	Available *int             `json:"available,omitempty"`
	Requested *int             `json:"requested,omitempty"`
	Expected  *decimal.Decimal `json:"expected,omitempty"`
	Got       *decimal.Decimal `json:"got,omitempty"`
}
