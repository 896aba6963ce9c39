package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type SaleItemInput struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateSaleInput struct {
	CustomerID       uint                `json:"customer_id" validate:"required"`
	UserID           *uint               `json:"user_id"`
	SaleDate         time.Time           `json:"sale_date"`
	Discount         decimal.Decimal     `json:"discount"`
	Notes            string              `json:"notes"`
	Items            []SaleItemInput     `json:"items" validate:"required,min=1,dive"`
	Installments     []ManualInstallment `json:"installments"`
	InstallmentCount int                 `json:"installment_count" validate:"min=0,max=120"`
}

type UpdateSaleInput struct {
	CustomerID uint              `json:"customer_id" validate:"required"`
	SaleDate   time.Time         `json:"sale_date"`
	Discount   decimal.Decimal   `json:"discount"`
	Notes      string            `json:"notes"`
	Status     domain.SaleStatus `json:"status" validate:"required"`
}

type SaleUC struct {
	Sales domain.SaleRepo
}

// Create valida a entrada, calcula totais e cronograma e delega a gravação atômica ao
// repositório, que confere cliente, produtos e estoque dentro da transação.
func (uc *SaleUC) Create(ctx context.Context, in CreateSaleInput) (*domain.Sale, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.SaleDate.IsZero() {
		return nil, domain.NewValidationError("sale_date", domain.ErrInvalidDate)
	}
	if in.Discount.IsNegative() {
		return nil, domain.NewValidationError("discount", domain.ErrNegativeAmount)
	}
	if len(in.Installments) > 0 && in.InstallmentCount > 0 {
		return nil, domain.NewValidationError("installments", domain.ErrScheduleConflict)
	}

	lines := make([]PriceLine, len(in.Items))
	for i, it := range in.Items {
		if it.UnitPrice.IsNegative() {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].unit_price", i), domain.ErrNegativeAmount)
		}
		lines[i] = PriceLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice.Round(2)}
	}
	totals := ComputeTotals(lines, in.Discount.Round(2))
	if totals.FinalValue.IsNegative() {
		return nil, domain.NewValidationError("discount", domain.ErrDiscountExceeds)
	}

	saleDate := domain.DateOnly(in.SaleDate)
	var specs []InstallmentSpec
	switch {
	case len(in.Installments) > 0:
		manual := make([]ManualInstallment, len(in.Installments))
		for i, m := range in.Installments {
			if m.Amount.IsNegative() {
				return nil, domain.NewValidationError(fmt.Sprintf("installments[%d].amount", i), domain.ErrNegativeAmount)
			}
			if m.DueDate.IsZero() {
				return nil, domain.NewValidationError(fmt.Sprintf("installments[%d].due_date", i), domain.ErrInvalidDate)
			}
			manual[i] = ManualInstallment{Amount: m.Amount.Round(2), DueDate: m.DueDate}
		}
		specs = ManualSchedule(manual)
		if err := CheckScheduleSum(specs, totals.FinalValue); err != nil {
			return nil, err
		}
	case in.InstallmentCount > 0:
		var err error
		if specs, err = EqualSplit(totals.FinalValue, in.InstallmentCount, saleDate); err != nil {
			return nil, err
		}
	}

	sale := &domain.Sale{
		CustomerID:   in.CustomerID,
		UserID:       in.UserID,
		SaleDate:     saleDate,
		Total:        totals.Total,
		Discount:     totals.Discount,
		FinalValue:   totals.FinalValue,
		Status:       domain.SaleStatusPending,
		Notes:        in.Notes,
		Installments: toInstallments(specs),
	}
	for i, l := range lines {
		sale.Items = append(sale.Items, domain.SaleItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  totals.Subtotals[i],
		})
	}

	if err := uc.Sales.Create(ctx, sale); err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			log.Warn().Uint("product_id", stockErr.ProductID).Int("available", stockErr.Available).Int("requested", stockErr.Requested).Msg("venda recusada por estoque")
		}
		return nil, err
	}
	log.Info().Uint("sale_id", sale.ID).Uint("customer_id", sale.CustomerID).Str("final_value", sale.FinalValue.StringFixed(2)).Int("installments", len(sale.Installments)).Msg("venda registrada")
	return uc.Sales.FindByID(ctx, sale.ID)
}

func (uc *SaleUC) Get(ctx context.Context, id uint) (*domain.Sale, error) {
	return uc.Sales.FindByID(ctx, id)
}

func (uc *SaleUC) List(ctx context.Context, f domain.SaleFilter) ([]domain.Sale, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", domain.ErrInvalidStatus)
	}
	if f.PageSize == 0 {
		f.PageSize = 15
	}
	return uc.Sales.List(ctx, f)
}

// Update altera os dados editáveis da venda. Itens são imutáveis; o valor final é
// recalculado a partir do total gravado e precisa continuar batendo com as parcelas.
// Com parcelas, pending e paid seguem o status derivado delas.
func (uc *SaleUC) Update(ctx context.Context, id uint, in UpdateSaleInput) (*domain.Sale, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if !in.Status.Valid() {
		return nil, domain.NewValidationError("status", domain.ErrInvalidStatus)
	}
	if in.SaleDate.IsZero() {
		return nil, domain.NewValidationError("sale_date", domain.ErrInvalidDate)
	}
	if in.Discount.IsNegative() {
		return nil, domain.NewValidationError("discount", domain.ErrNegativeAmount)
	}
	s, err := uc.Sales.Update(ctx, id, func(s *domain.Sale) error {
		if s.Status == domain.SaleStatusCancelled && in.Status != domain.SaleStatusCancelled {
			return domain.NewValidationError("status", domain.ErrInvalidTransition)
		}
		discount := in.Discount.Round(2)
		final := s.Total.Sub(discount)
		if final.IsNegative() {
			return domain.NewValidationError("discount", domain.ErrDiscountExceeds)
		}
		if in.Status != domain.SaleStatusCancelled {
			if !discount.Equal(s.Discount) {
				if err := CheckScheduleSum(specsOf(s.Installments), final); err != nil {
					return err
				}
			}
			if derived, ok := s.ScheduleStatus(); ok && derived != in.Status {
				if in.Status == domain.SaleStatusPaid {
					return domain.NewValidationError("status", domain.ErrOpenInstallments)
				}
				return domain.NewValidationError("status", domain.ErrStatusFromSchedule)
			}
		}
		s.CustomerID = in.CustomerID
		s.SaleDate = domain.DateOnly(in.SaleDate)
		s.Discount = discount
		s.FinalValue = final
		s.Notes = in.Notes
		s.Status = in.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("sale_id", id).Str("status", string(s.Status)).Msg("venda atualizada")
	return s, nil
}

func (uc *SaleUC) Delete(ctx context.Context, id uint) error {
	if err := uc.Sales.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Uint("sale_id", id).Msg("venda excluída")
	return nil
}
