package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"returns-backend/internal/infrastructure/database"
)

// strictEnv đọc env như getEnv*, nhưng giá trị sai format là lỗi thay vì fallback.
// Lỗi được gom lại để báo tất cả biến hỏng một lần.
type strictEnv struct {
	errs []error
}

func (e *strictEnv) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (e *strictEnv) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (e *strictEnv) err() error {
	return errors.Join(e.errs...)
}

// LoadDatabaseConfig build pool config cho refund/return store (Postgres)
func LoadDatabaseConfig() (*database.DBConfig, error) {
	env := &strictEnv{}

	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     env.int("DB_PORT", 5432),
		Username: getEnv("DB_USER", "returns"),
		Password: getEnv("DB_PASSWORD", "secret"),
		DBName:   getEnv("DB_NAME", "returns_dev"),

		MaxConns:          int32(env.int("DB_MAX_CONNECTIONS", 25)),
		MinConns:          int32(env.int("DB_MIN_CONNECTIONS", 5)),
		MaxConnLifetime:   env.duration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   env.duration("DB_MAX_CONN_IDLE_TIME", time.Minute),
		HealthCheckPeriod: env.duration("DB_HEALTH_CHECK_PERIOD", time.Minute),

		MaxRetries:     env.int("DB_MAX_RETRIES", 5),
		RetryDelay:     env.duration("DB_RETRY_DELAY", time.Second),
		ConnectTimeout: env.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
	if err := env.err(); err != nil {
		return nil, err
	}

	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.Host, validation.Required),
		validation.Field(&cfg.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.DBName, validation.Required),
		validation.Field(&cfg.MaxConns, validation.Required, validation.Min(int32(1))),
		validation.Field(&cfg.MinConns, validation.Min(int32(0)), validation.Max(cfg.MaxConns)),
		validation.Field(&cfg.ConnectTimeout, validation.Required),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	return cfg, nil
}
