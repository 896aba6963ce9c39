package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vendafacil/vendafacil/internal/domain"
)

// StockService concentra toda mutação de products.stock. Os métodos operam sobre a
// transação recebida; commit e rollback ficam com quem chamou.
type StockService struct{}

func NewStockService() *StockService { return &StockService{} }

// aggregate soma quantidades do mesmo produto preservando a ordem da primeira ocorrência.
func aggregate(lines []domain.StockLine) []domain.StockLine {
	idx := map[uint]int{}
	out := make([]domain.StockLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// Reserve confere, sem alterar nada, se há estoque para todas as linhas.
func (s *StockService) Reserve(ctx context.Context, tx *gorm.DB, lines []domain.StockLine) (map[uint]domain.Product, error) {
	agg := aggregate(lines)
	ids := make([]uint, 0, len(agg))
	for _, l := range agg {
		ids = append(ids, l.ProductID)
	}
	var list []domain.Product
	if err := tx.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, txErr("consultar produtos", err)
	}
	byID := make(map[uint]domain.Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}
	for _, l := range agg {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, domain.NewValidationError("items.product_id", domain.ErrProductNotFound)
		}
		if p.Stock < l.Quantity {
			return nil, &domain.InsufficientStockError{ProductID: p.ID, Available: p.Stock, Requested: l.Quantity}
		}
	}
	return byID, nil
}

// Apply baixa o estoque com decremento condicional; se outra transação consumiu o saldo
// entre a reserva e a baixa, nenhuma linha é afetada e a venda falha por estoque.
func (s *StockService) Apply(ctx context.Context, tx *gorm.DB, saleID uint, lines []domain.StockLine) error {
	agg := aggregate(lines)
	movs := make([]domain.StockMovement, 0, len(agg))
	for _, l := range agg {
		res := tx.WithContext(ctx).Model(&domain.Product{}).
			Where("id = ? AND stock >= ?", l.ProductID, l.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", l.Quantity))
		if res.Error != nil {
			return txErr("baixar estoque", res.Error)
		}
		if res.RowsAffected == 0 {
			available, err := s.current(ctx, tx, l.ProductID)
			if err != nil {
				return err
			}
			return &domain.InsufficientStockError{ProductID: l.ProductID, Available: available, Requested: l.Quantity}
		}
		movs = append(movs, domain.StockMovement{ProductID: l.ProductID, SaleID: saleRef(saleID), Kind: domain.StockMovementSale, Quantity: -l.Quantity})
	}
	return s.record(ctx, tx, movs)
}

// Release devolve ao estoque as quantidades das linhas. Chamar duas vezes para a mesma
// venda duplica a devolução.
func (s *StockService) Release(ctx context.Context, tx *gorm.DB, saleID uint, lines []domain.StockLine) error {
	agg := aggregate(lines)
	movs := make([]domain.StockMovement, 0, len(agg))
	for _, l := range agg {
		res := tx.WithContext(ctx).Model(&domain.Product{}).
			Where("id = ?", l.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", l.Quantity))
		if res.Error != nil {
			return txErr("devolver estoque", res.Error)
		}
		movs = append(movs, domain.StockMovement{ProductID: l.ProductID, SaleID: saleRef(saleID), Kind: domain.StockMovementReversal, Quantity: l.Quantity})
	}
	return s.record(ctx, tx, movs)
}

// Adjust define o estoque de um produto editado diretamente, registrando a diferença.
// A escrita só vale se o saldo lido não mudou; caso contrário devolve ErrStockConflict.
func (s *StockService) Adjust(ctx context.Context, tx *gorm.DB, productID uint, stock int) error {
	if stock < 0 {
		return domain.NewValidationError("stock", domain.ErrNegativeAmount)
	}
	cur, err := s.current(ctx, tx, productID)
	if err != nil {
		return err
	}
	delta := stock - cur
	if delta == 0 {
		return nil
	}
	res := tx.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock = ?", productID, cur).
		UpdateColumn("stock", stock)
	if res.Error != nil {
		return txErr("ajustar estoque", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrStockConflict
	}
	return s.record(ctx, tx, []domain.StockMovement{{ProductID: productID, Kind: domain.StockMovementAdjustment, Quantity: delta}})
}

func (s *StockService) current(ctx context.Context, tx *gorm.DB, productID uint) (int, error) {
	var p domain.Product
	if err := tx.WithContext(ctx).Select("id", "stock").First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewValidationError("product_id", domain.ErrProductNotFound)
		}
		return 0, txErr("consultar estoque", err)
	}
	return p.Stock, nil
}

func (s *StockService) record(ctx context.Context, tx *gorm.DB, movs []domain.StockMovement) error {
	if len(movs) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Create(&movs).Error; err != nil {
		return txErr("registrar movimento de estoque", err)
	}
	return nil
}

func saleRef(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
