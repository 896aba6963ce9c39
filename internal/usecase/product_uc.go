package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"max=100"`
	Stock       int             `json:"stock" validate:"min=0"`
	Active      *bool           `json:"active"`
}

func (in ProductInput) check() error {
	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}
	if in.Price.IsNegative() {
		return domain.NewValidationError("price", domain.ErrNegativeAmount)
	}
	return nil
}

func (in ProductInput) apply(p *domain.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.Stock = in.Stock
	if in.Active != nil {
		p.Active = *in.Active
	}
}

type ProductUC struct {
	Products domain.ProductRepo
	// LowStock é o limite de estoque considerado baixo.
	LowStock int
}

func (uc *ProductUC) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	p := &domain.Product{Active: true}
	in.apply(p)
	if err := uc.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update grava os dados do produto; a diferença de estoque vira um movimento de ajuste.
// Sem active na entrada o produto mantém a situação atual.
func (uc *ProductUC) Update(ctx context.Context, id uint, in ProductInput) (*domain.Product, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := uc.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	return uc.Products.FindByID(ctx, id)
}

func (uc *ProductUC) Get(ctx context.Context, id uint) (*domain.Product, error) {
	return uc.Products.FindByID(ctx, id)
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 15
	}
	return uc.Products.List(ctx, f, uc.LowStock)
}

func (uc *ProductUC) Delete(ctx context.Context, id uint) error {
	return uc.Products.Delete(ctx, id)
}

func (uc *ProductUC) Categories(ctx context.Context) ([]string, error) {
	return uc.Products.DistinctCategories(ctx)
}

func (uc *ProductUC) Movements(ctx context.Context, id uint) ([]domain.StockMovement, error) {
	if _, err := uc.Products.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return uc.Products.Movements(ctx, id)
}
