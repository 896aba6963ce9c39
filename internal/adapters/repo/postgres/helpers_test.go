package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendafacil/vendafacil/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{Name: name}
	require.NoError(t, NewCustomerRepo(db).Save(context.Background(), c))
	return c
}

func mustProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Price: money(price), Stock: stock, Active: true, Category: "Geral"}
	require.NoError(t, NewProductRepo(db, NewStockService()).Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

// newSale monta uma venda com um item por produto e as parcelas informadas.
func newSale(customerID uint, date time.Time, items []domain.SaleItem, amounts ...string) *domain.Sale {
	total := decimal.Zero
	for i := range items {
		items[i].Subtotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		total = total.Add(items[i].Subtotal)
	}
	s := &domain.Sale{
		CustomerID: customerID,
		SaleDate:   date,
		Total:      total,
		Discount:   decimal.Zero,
		FinalValue: total,
		Status:     domain.SaleStatusPending,
		Items:      items,
	}
	for i, a := range amounts {
		s.Installments = append(s.Installments, domain.Installment{
			Number:  i + 1,
			Amount:  money(a),
			DueDate: date.AddDate(0, i+1, 0),
			Status:  domain.InstallmentStatusPending,
		})
	}
	return s
}
