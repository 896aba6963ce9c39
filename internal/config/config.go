package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	Stock    StockConfig
}

type AppConfig struct {
	Env         string
	Port        string
	SeedDemo    bool
	CORSOrigins []string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// SlowQuery é o limite a partir do qual o log do gorm avisa consultas lentas.
	SlowQuery time.Duration
}

type LogConfig struct {
	Level string
}

type StockConfig struct {
	LowThreshold int
}

// envs liga cada chave às variáveis de ambiente aceitas, em ordem de precedência.
var envs = map[string][]string{
	"app.env":             {"APP_ENV"},
	"app.port":            {"PORT"},
	"app.seed_demo":       {"SEED_DEMO"},
	"app.cors_origins":    {"CORS_ORIGINS"},
	"database.dsn":        {"DB_DSN", "DATABASE_URL"},
	"database.host":       {"DB_HOST"},
	"database.port":       {"DB_PORT"},
	"database.user":       {"DB_USER", "POSTGRES_USER"},
	"database.password":   {"DB_PASSWORD", "POSTGRES_PASSWORD"},
	"database.name":       {"DB_NAME", "POSTGRES_DB"},
	"database.sslmode":    {"DB_SSLMODE"},
	"database.slow_query": {"DB_SLOW_QUERY"},
	"log.level":           {"LOG_LEVEL"},
	"stock.low_threshold": {"LOW_STOCK_THRESHOLD"},
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.seed_demo", false)
	v.SetDefault("app.cors_origins", []string{"*"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "vendafacil")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.slow_query", 200*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("stock.low_threshold", 5)
}

// Load lê defaults, depois config.toml (opcional) e por fim variáveis de ambiente.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if len(paths) == 0 {
		paths = []string{".", "/etc/vendafacil"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("lendo config.toml: %w", err)
		}
	}

	for key, names := range envs {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:         strings.ToLower(v.GetString("app.env")),
			Port:        v.GetString("app.port"),
			SeedDemo:    v.GetBool("app.seed_demo"),
			CORSOrigins: splitList(v.GetStringSlice("app.cors_origins")),
		},
		Database: DatabaseConfig{
			DSN:       strings.TrimSpace(v.GetString("database.dsn")),
			Host:      v.GetString("database.host"),
			Port:      v.GetInt("database.port"),
			User:      v.GetString("database.user"),
			Password:  v.GetString("database.password"),
			Name:      v.GetString("database.name"),
			SSLMode:   v.GetString("database.sslmode"),
			SlowQuery: v.GetDuration("database.slow_query"),
		},
		Log:   LogConfig{Level: v.GetString("log.level")},
		Stock: StockConfig{LowThreshold: v.GetInt("stock.low_threshold")},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList aceita tanto listas do TOML quanto "a,b" vindo do ambiente.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.App.Port == "" {
		return errors.New("config: porta HTTP vazia")
	}
	if c.Stock.LowThreshold < 0 {
		return errors.New("config: LOW_STOCK_THRESHOLD não pode ser negativo")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production" || c.App.Env == "prod"
}

// ConnString devolve database.dsn quando informado; senão monta a string no formato key=value do PostgreSQL.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}
