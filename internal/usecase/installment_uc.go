package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type PayInstallmentInput struct {
	PaymentDate time.Time `json:"payment_date"`
	Notes       string    `json:"notes" validate:"max=500"`
}

type UpdateInstallmentInput struct {
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date"`
	PaymentNotes string          `json:"payment_notes" validate:"max=500"`
}

type InstallmentUC struct {
	Installments domain.InstallmentRepo
	Clock        domain.Clock
}

func (uc *InstallmentUC) today() time.Time {
	return domain.DateOnly(uc.Clock.Now())
}

// MarkPaid quita a parcela; quando todas as parcelas da venda ficam pagas, a venda
// passa a paga na mesma transação.
func (uc *InstallmentUC) MarkPaid(ctx context.Context, id uint, in PayInstallmentInput) (*domain.Installment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.PaymentDate.IsZero() {
		return nil, domain.NewValidationError("payment_date", domain.ErrInvalidDate)
	}
	inst, err := uc.Installments.MarkPaid(ctx, id, in.PaymentDate, in.Notes)
	if err != nil {
		return nil, err
	}
	ev := log.Info().Uint("installment_id", id).Uint("sale_id", inst.SaleID)
	if inst.Sale != nil {
		ev = ev.Str("sale_status", string(inst.Sale.Status))
	}
	ev.Msg("parcela quitada")
	return inst, nil
}

// MarkOverdue marca como vencidas as parcelas pendentes com vencimento anterior a hoje.
func (uc *InstallmentUC) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := uc.Installments.MarkOverdue(ctx, uc.today())
	if err != nil {
		return 0, err
	}
	log.Info().Int64("count", n).Msg("parcelas marcadas como vencidas")
	return n, nil
}

func (uc *InstallmentUC) Update(ctx context.Context, id uint, in UpdateInstallmentInput) (*domain.Installment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Amount.IsNegative() {
		return nil, domain.NewValidationError("amount", domain.ErrNegativeAmount)
	}
	if in.DueDate.IsZero() {
		return nil, domain.NewValidationError("due_date", domain.ErrInvalidDate)
	}
	return uc.Installments.Update(ctx, id, func(i *domain.Installment) error {
		i.Amount = in.Amount.Round(2)
		i.DueDate = domain.DateOnly(in.DueDate)
		i.PaymentNotes = in.PaymentNotes
		return nil
	})
}

func (uc *InstallmentUC) Delete(ctx context.Context, id uint) error {
	return uc.Installments.Delete(ctx, id)
}

func (uc *InstallmentUC) Get(ctx context.Context, id uint) (*domain.Installment, error) {
	return uc.Installments.FindByID(ctx, id)
}

func (uc *InstallmentUC) List(ctx context.Context, f domain.InstallmentFilter) ([]domain.Installment, int64, domain.InstallmentStats, error) {
	if f.Window != "" && !f.Window.Valid() {
		return nil, 0, domain.InstallmentStats{}, domain.NewValidationError("window", domain.ErrInvalidWindow)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.InstallmentStats{}, domain.NewValidationError("status", domain.ErrInvalidStatus)
	}
	list, total, err := uc.Installments.List(ctx, f, uc.today())
	if err != nil {
		return nil, 0, domain.InstallmentStats{}, err
	}
	stats, err := uc.Installments.Stats(ctx, uc.today())
	if err != nil {
		return nil, 0, domain.InstallmentStats{}, err
	}
	return list, total, stats, nil
}
