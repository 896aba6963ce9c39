package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendafacil/vendafacil/internal/adapters/repo/postgres"
	"github.com/vendafacil/vendafacil/internal/domain"
	"github.com/vendafacil/vendafacil/internal/usecase"
)

var today = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

type env struct {
	db           *gorm.DB
	customers    *usecase.CustomerUC
	products     *usecase.ProductUC
	sales        *usecase.SaleUC
	installments *usecase.InstallmentUC
	reports      *usecase.ReportUC
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	clock := domain.FixedClock(today)
	stock := postgres.NewStockService()
	return &env{
		db:           db,
		customers:    &usecase.CustomerUC{Customers: postgres.NewCustomerRepo(db)},
		products:     &usecase.ProductUC{Products: postgres.NewProductRepo(db, stock), LowStock: 5},
		sales:        &usecase.SaleUC{Sales: postgres.NewSaleRepo(db, stock)},
		installments: &usecase.InstallmentUC{Installments: postgres.NewInstallmentRepo(db), Clock: clock},
		reports:      &usecase.ReportUC{Reports: postgres.NewReportRepo(db), Clock: clock, LowStock: 5},
	}
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *env) customer(t *testing.T, name string) *domain.Customer {
	t.Helper()
	c, err := e.customers.Create(context.Background(), usecase.CustomerInput{Name: name})
	require.NoError(t, err)
	return c
}

func (e *env) product(t *testing.T, name, price string, stock int) *domain.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), usecase.ProductInput{Name: name, Price: money(price), Stock: stock, Category: "Geral"})
	require.NoError(t, err)
	return p
}

func (e *env) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := e.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
