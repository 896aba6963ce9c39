package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type CustomerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) Save(ctx context.Context, c *domain.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.State = strings.ToUpper(strings.TrimSpace(c.State))
	return r.db.WithContext(ctx).Omit("Sales").Save(c).Error
}

func (r *CustomerRepo) FindByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CustomerRepo) FindWithSales(ctx context.Context, id uint) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.WithContext(ctx).
		Preload("Sales", func(db *gorm.DB) *gorm.DB { return db.Order("sale_date desc").Order("id desc") }).
		Preload("Sales.Items.Product").
		Preload("Sales.Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number asc") }).
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CustomerRepo) List(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Customer{})
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ? OR tax_id LIKE ?)", like, like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(f.Page, f.PageSize, 15)
	var list []domain.Customer
	if err := q.Order("created_at desc").Order("id desc").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Delete recusa clientes com vendas: a venda mantém a referência ao cliente por toda a vida.
func (r *CustomerRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Sale{}).Where("customer_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrInUse
		}
		res := tx.Delete(&domain.Customer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
