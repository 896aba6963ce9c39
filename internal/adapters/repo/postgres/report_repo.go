package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vendafacil/vendafacil/internal/domain"
)

// ReportRepo carrega os dados brutos dos relatórios; a agregação acontece no caso de uso.
type ReportRepo struct{ db *gorm.DB }

func NewReportRepo(db *gorm.DB) *ReportRepo { return &ReportRepo{db: db} }

func (r *ReportRepo) Counts(ctx context.Context) (customers, products, sales int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&domain.Customer{}).Count(&customers).Error; err != nil {
		return
	}
	if err = db.Model(&domain.Product{}).Count(&products).Error; err != nil {
		return
	}
	err = db.Model(&domain.Sale{}).Count(&sales).Error
	return
}

func (r *ReportRepo) SalesInRange(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	var list []domain.Sale
	err := r.db.WithContext(ctx).
		Where("sale_date >= ? AND sale_date <= ?", domain.DateOnly(from), domain.DateOnly(to)).
		Preload("Customer").
		Preload("Items.Product").
		Order("sale_date asc").Order("id asc").
		Find(&list).Error
	return list, err
}

func (r *ReportRepo) RecentSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	var list []domain.Sale
	err := r.db.WithContext(ctx).Preload("Customer").
		Order("sale_date desc").Order("id desc").Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *ReportRepo) InstallmentsDueInRange(ctx context.Context, from, to time.Time) ([]domain.Installment, error) {
	var list []domain.Installment
	err := r.db.WithContext(ctx).
		Where("due_date >= ? AND due_date <= ?", domain.DateOnly(from), domain.DateOnly(to)).
		Preload("Sale.Customer").
		Order("due_date asc").Order("id asc").
		Find(&list).Error
	return list, err
}

// InstallmentsPaidInRange ignora pagamentos de vendas que foram canceladas.
func (r *ReportRepo) InstallmentsPaidInRange(ctx context.Context, from, to time.Time) ([]domain.Installment, error) {
	var list []domain.Installment
	err := r.db.WithContext(ctx).
		Scopes(activeSale).
		Where("status = ? AND payment_date >= ? AND payment_date <= ?", domain.InstallmentStatusPaid, domain.DateOnly(from), domain.DateOnly(to)).
		Order("payment_date asc").
		Find(&list).Error
	return list, err
}

// OpenInstallments lista parcelas em aberto de vendas não canceladas.
func (r *ReportRepo) OpenInstallments(ctx context.Context) ([]domain.Installment, error) {
	var list []domain.Installment
	err := r.db.WithContext(ctx).
		Scopes(activeSale).
		Where("status IN ?", []domain.InstallmentStatus{domain.InstallmentStatusPending, domain.InstallmentStatusOverdue}).
		Preload("Sale.Customer").
		Order("due_date asc").Order("id asc").
		Find(&list).Error
	return list, err
}

func (r *ReportRepo) Products(ctx context.Context) ([]domain.Product, error) {
	var list []domain.Product
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, err
}

// SoldQuantities soma as quantidades vendidas por produto, ignorando vendas canceladas.
func (r *ReportRepo) SoldQuantities(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		ProductID uint
		Qty       int64
	}
	err := r.db.WithContext(ctx).Model(&domain.SaleItem{}).
		Select("sale_items.product_id AS product_id, SUM(sale_items.quantity) AS qty").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status <> ?", domain.SaleStatusCancelled).
		Group("sale_items.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(rows))
	for _, row := range rows {
		out[row.ProductID] = int(row.Qty)
	}
	return out, nil
}
