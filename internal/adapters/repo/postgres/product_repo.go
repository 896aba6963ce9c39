package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type ProductRepo struct {
	db    *gorm.DB
	stock *StockService
}

func NewProductRepo(db *gorm.DB, stock *StockService) *ProductRepo {
	return &ProductRepo{db: db, stock: stock}
}

// Create grava o produto com estoque zero e lança o estoque inicial como ajuste.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	initial := p.Stock
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p.Stock = 0
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return r.stock.Adjust(ctx, tx, p.ID, initial)
	})
	p.Stock = initial
	if err != nil {
		p.ID = 0
	}
	return err
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Product{ID: p.ID}).
			Select("name", "description", "price", "category", "active").
			Updates(p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return r.stock.Adjust(ctx, tx, p.ID, p.Stock)
	})
}

func (r *ProductRepo) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter, lowStock int) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)", like, like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.LowStock {
		q = q.Where("stock <= ?", lowStock)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(f.Page, f.PageSize, 15)
	var list []domain.Product
	if err := q.Order("created_at desc").Order("id desc").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Delete recusa produtos já vendidos; para tirá-los do catálogo basta desativar.
func (r *ProductRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.SaleItem{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrInUse
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.StockMovement{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	cats := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Distinct("category").Where("category <> ''").Order("category asc").Pluck("category", &cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *ProductRepo) Movements(ctx context.Context, productID uint) ([]domain.StockMovement, error) {
	var list []domain.StockMovement
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
