package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	CORS struct {
		AllowedOrigins string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`

	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Stock struct {
		LockTimeout time.Duration `mapstructure:"lock_timeout"`
	} `mapstructure:"stock"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`

	Kafka struct {
		Brokers string `mapstructure:"brokers"`
		Topic   string `mapstructure:"topic"`
	} `mapstructure:"kafka"`
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=factory port=5432 sslmode=disable"

// Load reads configuration from the environment. Variables from envFile (or
// ./.env when envFile is empty and the file exists) are loaded first without
// overriding variables already set. Nested keys map to upper-case names with
// underscores: http.addr is HTTP_ADDR, stock.lock_timeout is STOCK_LOCK_TIMEOUT.
func Load(envFile string) (Config, error) {
	var c Config

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return c, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "prod")
	v.SetDefault("app.log_level", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173")
	v.SetDefault("database.dsn", defaultDSN)
	v.SetDefault("stock.lock_timeout", 5*time.Second)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "production.committed")

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("HTTP_ADDR cannot be empty")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("DATABASE_DSN cannot be empty")
	}
	if c.Stock.LockTimeout < 0 {
		return fmt.Errorf("STOCK_LOCK_TIMEOUT cannot be negative, got %s", c.Stock.LockTimeout)
	}
	return nil
}

// KafkaBrokers splits the comma-separated broker list.
func (c Config) KafkaBrokers() []string {
	return splitList(c.Kafka.Brokers)
}

// CORSOrigins splits the comma-separated origin list.
func (c Config) CORSOrigins() []string {
	return splitList(c.CORS.AllowedOrigins)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UsesDefaultDSN reports whether no database was configured.
func (c Config) UsesDefaultDSN() bool {
	return c.Database.DSN == defaultDSN
}
