package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vendafacil/vendafacil/internal/adapters/repo/postgres"
	"github.com/vendafacil/vendafacil/internal/app"
	"github.com/vendafacil/vendafacil/internal/config"
	"github.com/vendafacil/vendafacil/internal/domain"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	gormLevel := gormlogger.Warn
	if level <= zerolog.DebugLevel {
		gormLevel = gormlogger.Info
	}
	db, err := gorm.Open(gormpg.Open(cfg.Database.ConnString()), &gorm.Config{
		Logger: postgres.NewGormLogger(zlog.Logger, gormLevel, cfg.Database.SlowQuery),
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to database")
	}

	application, err := app.NewApp(db, cfg, domain.SystemClock{})
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}
	if err := application.MigrateAndSeed(context.Background()); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate and seed database")
	}

	port := cfg.App.Port
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil && !cfg.IsProduction() {
		for p := 8081; p <= 8090; p++ {
			if l2, err2 := net.Listen("tcp", fmt.Sprintf(":%d", p)); err2 == nil {
				ln, err = l2, nil
				port = fmt.Sprint(p)
				break
			}
		}
	}
	if err != nil {
		zlog.Fatal().Err(err).Str("port", port).Msg("failed to listen")
	}

	server := &http.Server{
		Handler:           application.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info().Str("port", port).Str("env", cfg.App.Env).Msg("listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("shutdown")
	}
}
