package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type InstallmentRepo struct{ db *gorm.DB }

func NewInstallmentRepo(db *gorm.DB) *InstallmentRepo { return &InstallmentRepo{db: db} }

func (r *InstallmentRepo) FindByID(ctx context.Context, id uint) (*domain.Installment, error) {
	var i domain.Installment
	err := r.db.WithContext(ctx).
		Preload("Sale.Customer").
		Preload("Sale.Items.Product").
		First(&i, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &i, nil
}

func (r *InstallmentRepo) List(ctx context.Context, f domain.InstallmentFilter, today time.Time) ([]domain.Installment, int64, error) {
	today = domain.DateOnly(today)
	q := r.db.WithContext(ctx).Model(&domain.Installment{})
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		sub := r.db.Model(&domain.Sale{}).Select("sales.id").
			Joins("JOIN customers ON customers.id = sales.customer_id").
			Where("LOWER(customers.name) LIKE ?", like)
		if n, err := strconv.Atoi(query); err == nil {
			q = q.Where("(number = ? OR sale_id IN (?))", n, sub)
		} else {
			q = q.Where("sale_id IN (?)", sub)
		}
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Window != "" {
		q = q.Scopes(activeSale)
	}
	switch f.Window {
	case domain.DueWindowOverdue:
		q = q.Where("((status = ? AND due_date < ?) OR status = ?)", domain.InstallmentStatusPending, today, domain.InstallmentStatusOverdue)
	case domain.DueWindowToday:
		q = q.Where("due_date = ?", today)
	case domain.DueWindowNext7Days:
		q = q.Where("due_date >= ? AND due_date <= ?", today, today.AddDate(0, 0, 7))
	}
	if f.From != nil {
		q = q.Where("due_date >= ?", domain.DateOnly(*f.From))
	}
	if f.To != nil {
		q = q.Where("due_date <= ?", domain.DateOnly(*f.To))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(f.Page, f.PageSize, 15)
	var list []domain.Installment
	if err := q.Order("due_date asc").Order("id asc").Offset(offset).Limit(limit).Preload("Sale.Customer").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Stats resume os recebíveis em aberto; parcelas de vendas canceladas não entram.
func (r *InstallmentRepo) Stats(ctx context.Context, today time.Time) (domain.InstallmentStats, error) {
	today = domain.DateOnly(today)
	st := domain.InstallmentStats{TotalPending: decimal.Zero, TotalOverdue: decimal.Zero}
	var open []domain.Installment
	err := r.db.WithContext(ctx).
		Scopes(activeSale).
		Where("status IN ?", []domain.InstallmentStatus{domain.InstallmentStatusPending, domain.InstallmentStatusOverdue}).
		Find(&open).Error
	if err != nil {
		return st, err
	}
	for _, i := range open {
		if i.Status == domain.InstallmentStatusPending {
			st.TotalPending = st.TotalPending.Add(i.Amount)
			if i.DueDate.Equal(today) {
				st.DueToday++
			}
		}
		if i.IsOverdue(today) {
			st.TotalOverdue = st.TotalOverdue.Add(i.Amount)
		}
	}
	return st, nil
}

// MarkPaid quita a parcela e reavalia o status da venda na mesma transação.
func (r *InstallmentRepo) MarkPaid(ctx context.Context, id uint, paidOn time.Time, notes string) (*domain.Installment, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var i domain.Installment
		if err := tx.First(&i, id).Error; err != nil {
			return notFound(err)
		}
		if i.Status == domain.InstallmentStatusPaid {
			return domain.NewValidationError("status", domain.ErrAlreadyPaid)
		}
		d := domain.DateOnly(paidOn)
		err := tx.Model(&i).Updates(map[string]any{
			"status":        domain.InstallmentStatusPaid,
			"payment_date":  d,
			"payment_notes": notes,
		}).Error
		if err != nil {
			return txErr("quitar parcela", err)
		}
		return recomputeSaleStatus(tx, i.SaleID)
	})
	if err != nil {
		return nil, txErr("quitar parcela", err)
	}
	return r.FindByID(ctx, id)
}

// MarkOverdue marca como vencidas as parcelas pendentes de vendas ativas.
func (r *InstallmentRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Installment{}).
		Scopes(activeSale).
		Where("status = ? AND due_date < ?", domain.InstallmentStatusPending, domain.DateOnly(today)).
		Update("status", domain.InstallmentStatusOverdue)
	if res.Error != nil {
		return 0, txErr("marcar parcelas vencidas", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *InstallmentRepo) Update(ctx context.Context, id uint, fn func(i *domain.Installment) error) (*domain.Installment, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var i domain.Installment
		if err := tx.First(&i, id).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&i); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&i).Error; err != nil {
			return txErr("atualizar parcela", err)
		}
		return recomputeSaleStatus(tx, i.SaleID)
	})
	if err != nil {
		return nil, txErr("atualizar parcela", err)
	}
	return r.FindByID(ctx, id)
}

func (r *InstallmentRepo) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var i domain.Installment
		if err := tx.First(&i, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&domain.Installment{}, i.ID).Error; err != nil {
			return txErr("excluir parcela", err)
		}
		return recomputeSaleStatus(tx, i.SaleID)
	})
	return txErr("excluir parcela", err)
}
