package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vendafacil/vendafacil/internal/adapters/httpserver"
	"github.com/vendafacil/vendafacil/internal/adapters/repo/postgres"
	"github.com/vendafacil/vendafacil/internal/config"
	"github.com/vendafacil/vendafacil/internal/domain"
	"github.com/vendafacil/vendafacil/internal/usecase"
)

type App struct {
	DB            *gorm.DB
	Config        *config.Config
	CustomerUC    *usecase.CustomerUC
	ProductUC     *usecase.ProductUC
	SaleUC        *usecase.SaleUC
	InstallmentUC *usecase.InstallmentUC
	ReportUC      *usecase.ReportUC
}

func NewApp(db *gorm.DB, cfg *config.Config, clock domain.Clock) (*App, error) {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	stock := postgres.NewStockService()

	app := &App{DB: db, Config: cfg}
	app.CustomerUC = &usecase.CustomerUC{Customers: postgres.NewCustomerRepo(db)}
	app.ProductUC = &usecase.ProductUC{Products: postgres.NewProductRepo(db, stock), LowStock: cfg.Stock.LowThreshold}
	app.SaleUC = &usecase.SaleUC{Sales: postgres.NewSaleRepo(db, stock)}
	app.InstallmentUC = &usecase.InstallmentUC{Installments: postgres.NewInstallmentRepo(db), Clock: clock}
	app.ReportUC = &usecase.ReportUC{Reports: postgres.NewReportRepo(db), Clock: clock, LowStock: cfg.Stock.LowThreshold}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Customers:    a.CustomerUC,
		Products:     a.ProductUC,
		Sales:        a.SaleUC,
		Installments: a.InstallmentUC,
		Reports:      a.ReportUC,
		CORSOrigins:  a.Config.App.CORSOrigins,
	})
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := postgres.Migrate(a.DB); err != nil {
		return err
	}
	if !a.Config.App.SeedDemo {
		return nil
	}
	var count int64
	if err := a.DB.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := a.seed(ctx); err != nil {
		return err
	}
	log.Info().Msg("dados de demonstração criados")
	return nil
}
