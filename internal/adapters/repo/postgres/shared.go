package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vendafacil/vendafacil/internal/domain"
)

// txErr embrulha falhas de persistência; erros de domínio passam sem alteração.
func txErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInstallmentMismatch),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInUse),
		errors.Is(err, domain.ErrStockConflict),
		errors.Is(err, domain.ErrTransactionFailure):
		return err
	}
	return &domain.TransactionError{Op: op, Err: err}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func paginate(page, size, def int) (offset, limit int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = def
	}
	return (page - 1) * size, size
}

// recomputeSaleStatus relê todas as parcelas da venda; a venda passa a paga somente
// quando existe ao menos uma parcela e todas estão pagas.
func recomputeSaleStatus(tx *gorm.DB, saleID uint) error {
	var statuses []domain.InstallmentStatus
	if err := tx.Model(&domain.Installment{}).Where("sale_id = ?", saleID).Pluck("status", &statuses).Error; err != nil {
		return txErr("consultar parcelas", err)
	}
	if len(statuses) == 0 {
		return nil
	}
	for _, st := range statuses {
		if st != domain.InstallmentStatusPaid {
			return nil
		}
	}
	err := tx.Model(&domain.Sale{}).
		Where("id = ? AND status = ?", saleID, domain.SaleStatusPending).
		Update("status", domain.SaleStatusPaid).Error
	return txErr("atualizar status da venda", err)
}

// activeSale restringe parcelas às de vendas não canceladas.
func activeSale(db *gorm.DB) *gorm.DB {
	return db.Where("installments.sale_id NOT IN (SELECT id FROM sales WHERE status = ?)", domain.SaleStatusCancelled)
}
