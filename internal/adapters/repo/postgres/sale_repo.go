package postgres

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type SaleRepo struct {
	db    *gorm.DB
	stock *StockService
}

func NewSaleRepo(db *gorm.DB, stock *StockService) *SaleRepo {
	return &SaleRepo{db: db, stock: stock}
}

func (r *SaleRepo) Create(ctx context.Context, s *domain.Sale) error {
	items := append([]domain.SaleItem(nil), s.Items...)
	insts := append([]domain.Installment(nil), s.Installments...)
	lines := s.StockLines()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Customer{}).Where("id = ?", s.CustomerID).Count(&n).Error; err != nil {
			return txErr("consultar cliente", err)
		}
		if n == 0 {
			return domain.NewValidationError("customer_id", domain.ErrCustomerNotFound)
		}
		if _, err := r.stock.Reserve(ctx, tx, lines); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			return txErr("gravar venda", err)
		}
		for i := range items {
			items[i].SaleID = s.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return txErr("gravar itens", err)
		}
		if err := r.stock.Apply(ctx, tx, s.ID, lines); err != nil {
			return err
		}
		if len(insts) > 0 {
			for i := range insts {
				insts[i].SaleID = s.ID
			}
			if err := tx.Omit(clause.Associations).Create(&insts).Error; err != nil {
				return txErr("gravar parcelas", err)
			}
		}
		return nil
	})
	if err != nil {
		s.ID = 0
		return txErr("criar venda", err)
	}
	s.Items = items
	s.Installments = insts
	return nil
}

func (r *SaleRepo) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	var s domain.Sale
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Product").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number asc") }).
		First(&s, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SaleRepo) List(ctx context.Context, f domain.SaleFilter) ([]domain.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Sale{})
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		sub := r.db.Model(&domain.Customer{}).Select("id").Where("LOWER(name) LIKE ?", like)
		if id, err := strconv.ParseUint(query, 10, 64); err == nil {
			q = q.Where("(sales.id = ? OR sales.customer_id IN (?))", id, sub)
		} else {
			q = q.Where("sales.customer_id IN (?)", sub)
		}
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("sale_date >= ?", domain.DateOnly(*f.From))
	}
	if f.To != nil {
		q = q.Where("sale_date <= ?", domain.DateOnly(*f.To))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(f.Page, f.PageSize, 15)
	var list []domain.Sale
	err := q.Order("sale_date desc").Order("id desc").Offset(offset).Limit(limit).
		Preload("Customer").
		Preload("Items.Product").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number asc") }).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *SaleRepo) Update(ctx context.Context, id uint, fn func(s *domain.Sale) error) (*domain.Sale, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Sale
		err := tx.Preload("Items").
			Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number asc") }).
			First(&s, id).Error
		if err != nil {
			return notFound(err)
		}
		prevStatus, prevCustomer := s.Status, s.CustomerID
		if err := fn(&s); err != nil {
			return err
		}
		if s.CustomerID != prevCustomer {
			var n int64
			if err := tx.Model(&domain.Customer{}).Where("id = ?", s.CustomerID).Count(&n).Error; err != nil {
				return txErr("consultar cliente", err)
			}
			if n == 0 {
				return domain.NewValidationError("customer_id", domain.ErrCustomerNotFound)
			}
		}
		if prevStatus != domain.SaleStatusCancelled && s.Status == domain.SaleStatusCancelled {
			if err := r.stock.Release(ctx, tx, s.ID, s.StockLines()); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Save(&s).Error; err != nil {
			return txErr("atualizar venda", err)
		}
		return recomputeSaleStatus(tx, s.ID)
	})
	if err != nil {
		return nil, txErr("atualizar venda", err)
	}
	return r.FindByID(ctx, id)
}

// Delete devolve o estoque dos itens e remove a venda com itens e parcelas. Vendas
// canceladas já devolveram o estoque no cancelamento.
func (r *SaleRepo) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Sale
		if err := tx.Preload("Items").First(&s, id).Error; err != nil {
			return notFound(err)
		}
		if s.Status != domain.SaleStatusCancelled {
			if err := r.stock.Release(ctx, tx, s.ID, s.StockLines()); err != nil {
				return err
			}
		}
		if err := tx.Where("sale_id = ?", s.ID).Delete(&domain.Installment{}).Error; err != nil {
			return txErr("excluir parcelas", err)
		}
		if err := tx.Where("sale_id = ?", s.ID).Delete(&domain.SaleItem{}).Error; err != nil {
			return txErr("excluir itens", err)
		}
		if err := tx.Delete(&domain.Sale{}, s.ID).Error; err != nil {
			return txErr("excluir venda", err)
		}
		return nil
	})
	return txErr("excluir venda", err)
}
