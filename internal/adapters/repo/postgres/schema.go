package postgres

import (
	"gorm.io/gorm"

	"github.com/vendafacil/vendafacil/internal/domain"
)

// Migrate cria ou atualiza as tabelas. Restrições específicas do PostgreSQL são aplicadas
// só nesse dialeto.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Customer{}, &domain.Product{}, &domain.Sale{}, &domain.SaleItem{}, &domain.Installment{}, &domain.StockMovement{},
	); err != nil {
		return err
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	_ = db.Exec("ALTER TABLE products ADD CONSTRAINT chk_products_stock_nonnegative CHECK (stock >= 0)").Error
	_ = db.Exec("ALTER TABLE sale_items ADD CONSTRAINT chk_sale_items_quantity_positive CHECK (quantity >= 1)").Error
	_ = db.Exec("CREATE INDEX IF NOT EXISTS idx_installments_status_due ON installments(status, due_date)").Error
	_ = db.Exec("CREATE INDEX IF NOT EXISTS idx_sales_status_date ON sales(status, sale_date)").Error
	return nil
}
