package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendafacil/vendafacil/internal/config"
	"github.com/vendafacil/vendafacil/internal/domain"
)

func newTestApp(t *testing.T, seed bool) *App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		App:   config.AppConfig{Env: "test", SeedDemo: seed},
		Stock: config.StockConfig{LowThreshold: 5},
	}
	a, err := NewApp(db, cfg, nil)
	require.NoError(t, err)
	return a
}

func TestMigrateAndSeed(t *testing.T) {
	a := newTestApp(t, true)
	ctx := context.Background()
	require.NoError(t, a.MigrateAndSeed(ctx))

	var products, customers int64
	require.NoError(t, a.DB.Model(&domain.Product{}).Count(&products).Error)
	require.NoError(t, a.DB.Model(&domain.Customer{}).Count(&customers).Error)
	assert.EqualValues(t, 5, products)
	assert.EqualValues(t, 3, customers)

	// segunda execução não duplica
	require.NoError(t, a.MigrateAndSeed(ctx))
	require.NoError(t, a.DB.Model(&domain.Product{}).Count(&products).Error)
	assert.EqualValues(t, 5, products)

	movements, err := a.ProductUC.Movements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.StockMovementAdjustment, movements[0].Kind)
}

func TestMigrateWithoutSeed(t *testing.T) {
	a := newTestApp(t, false)
	require.NoError(t, a.MigrateAndSeed(context.Background()))

	var products int64
	require.NoError(t, a.DB.Model(&domain.Product{}).Count(&products).Error)
	assert.Zero(t, products)
}

func TestHTTPHandler(t *testing.T) {
	a := newTestApp(t, true)
	require.NoError(t, a.MigrateAndSeed(context.Background()))

	w := httptest.NewRecorder()
	a.HTTPHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/categories", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Acessórios","Calçados","Vestuário"]`, w.Body.String())
}
