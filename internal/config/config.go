package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	JWT     JWTConfig
	VNPay   VNPayConfig
	Momo    MomoConfig
	ZaloPay ZaloPayConfig
	Stripe  StripeConfig
	Refund  RefundConfig
	Returns ReturnsConfig
	Worker  WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// =====================================================
// PAYMENT PROVIDERS
// =====================================================

type VNPayConfig struct {
	TmnCode    string // Merchant Code (e.g., "DEMOV01")
	HashSecret string // Secret key for HMAC-SHA512
	APIURL     string // VNPay API base URL
}

type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string // Secret Key for HMAC-SHA256
	APIURL      string
}

type ZaloPayConfig struct {
	AppID  int
	Key1   string // HMAC-SHA256 key cho request
	APIURL string
}

type StripeConfig struct {
	SecretKey string
}

// =====================================================
// WORKFLOW
// =====================================================

type RefundConfig struct {
	GatewayTimeout  time.Duration // bounded timeout cho mỗi gateway call
	RateLimit       int           // số lần PUT /refunds/:id/status mỗi actor trong window
	RateLimitWindow time.Duration
}

type ReturnsConfig struct {
	MethodDeadline time.Duration // thời hạn chọn phương thức trả hàng sau khi approve
	EstimateTTL    time.Duration // TTL cache refund estimate
	OverdueCron    string
}

type WorkerConfig struct {
	Concurrency     int
	HealthPort      string
	ShutdownTimeout time.Duration
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Returns API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		VNPay: VNPayConfig{
			TmnCode:    getEnv("VNPAY_TMN_CODE", ""),
			HashSecret: getEnv("VNPAY_HASH_SECRET", ""),
			APIURL:     getEnv("VNPAY_API_URL", "https://sandbox.vnpayment.vn"),
		},
		Momo: MomoConfig{
			PartnerCode: getEnv("MOMO_PARTNER_CODE", ""),
			AccessKey:   getEnv("MOMO_ACCESS_KEY", ""),
			SecretKey:   getEnv("MOMO_SECRET_KEY", ""),
			APIURL:      getEnv("MOMO_API_URL", "https://test-payment.momo.vn"),
		},
		ZaloPay: ZaloPayConfig{
			AppID:  getEnvInt("ZALOPAY_APP_ID", 0),
			Key1:   getEnv("ZALOPAY_KEY1", ""),
			APIURL: getEnv("ZALOPAY_API_URL", "https://sb-openapi.zalopay.vn"),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		},
		Refund: RefundConfig{
			GatewayTimeout:  getEnvDuration("REFUND_GATEWAY_TIMEOUT", 20*time.Second),
			RateLimit:       getEnvInt("REFUND_RATE_LIMIT", 10),
			RateLimitWindow: getEnvDuration("REFUND_RATE_LIMIT_WINDOW", time.Minute),
		},
		Returns: ReturnsConfig{
			MethodDeadline: getEnvDuration("RETURN_METHOD_DEADLINE", 24*time.Hour),
			EstimateTTL:    getEnvDuration("RETURN_ESTIMATE_TTL", 10*time.Minute),
			OverdueCron:    getEnv("RETURN_OVERDUE_CRON", "@every 1h"),
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvInt("WORKER_CONCURRENCY", 10),
			HealthPort:      getEnv("WORKER_HEALTH_PORT", "9999"),
			ShutdownTimeout: getEnvDuration("WORKER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Refund.GatewayTimeout <= 0 {
		return fmt.Errorf("REFUND_GATEWAY_TIMEOUT must be positive")
	}
	if c.Returns.MethodDeadline <= 0 {
		return fmt.Errorf("RETURN_METHOD_DEADLINE must be positive")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}

		// Provider thiếu config chỉ warn: refund qua provider đó sẽ fail ở gateway
		if c.VNPay.TmnCode == "" {
			log.Warn().Msg("VNPay TmnCode not set - VNPay refunds will not work")
		}
		if c.Momo.PartnerCode == "" {
			log.Warn().Msg("Momo PartnerCode not set - Momo refunds will not work")
		}
		if c.ZaloPay.AppID == 0 {
			log.Warn().Msg("ZaloPay AppID not set - ZaloPay refunds will not work")
		}
		if c.Stripe.SecretKey == "" {
			log.Warn().Msg("Stripe secret key not set - Stripe refunds will not work")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
