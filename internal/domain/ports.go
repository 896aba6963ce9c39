package domain

import (
	"context"
	"time"
)

type CustomerRepo interface {
	Save(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id uint) (*Customer, error)
	FindWithSales(ctx context.Context, id uint) (*Customer, error)
	List(ctx context.Context, f CustomerFilter) ([]Customer, int64, error)
	Delete(ctx context.Context, id uint) error
}

type ProductRepo interface {
	Create(ctx context.Context, p *Product) error
	// Update grava os campos cadastrais; mudança de estoque passa pelo ajuste de estoque.
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, f ProductFilter, lowStock int) ([]Product, int64, error)
	Delete(ctx context.Context, id uint) error
	DistinctCategories(ctx context.Context) ([]string, error)
	Movements(ctx context.Context, productID uint) ([]StockMovement, error)
}

type SaleRepo interface {
	// Create persiste venda, itens e parcelas e baixa o estoque numa única transação.
	Create(ctx context.Context, s *Sale) error
	FindByID(ctx context.Context, id uint) (*Sale, error)
	List(ctx context.Context, f SaleFilter) ([]Sale, int64, error)
	// Update aplica fn sobre a venda carregada dentro da transação.
	Update(ctx context.Context, id uint, fn func(s *Sale) error) (*Sale, error)
	Delete(ctx context.Context, id uint) error
}

type InstallmentRepo interface {
	FindByID(ctx context.Context, id uint) (*Installment, error)
	List(ctx context.Context, f InstallmentFilter, today time.Time) ([]Installment, int64, error)
	Stats(ctx context.Context, today time.Time) (InstallmentStats, error)
	MarkPaid(ctx context.Context, id uint, paidOn time.Time, notes string) (*Installment, error)
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
	Update(ctx context.Context, id uint, fn func(i *Installment) error) (*Installment, error)
	Delete(ctx context.Context, id uint) error
}

type ReportRepo interface {
	Counts(ctx context.Context) (customers, products, sales int64, err error)
	SalesInRange(ctx context.Context, from, to time.Time) ([]Sale, error)
	RecentSales(ctx context.Context, limit int) ([]Sale, error)
	InstallmentsDueInRange(ctx context.Context, from, to time.Time) ([]Installment, error)
	InstallmentsPaidInRange(ctx context.Context, from, to time.Time) ([]Installment, error)
	OpenInstallments(ctx context.Context) ([]Installment, error)
	Products(ctx context.Context) ([]Product, error)
	SoldQuantities(ctx context.Context) (map[uint]int, error)
}
