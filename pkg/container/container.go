package container

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"returns-backend/internal/config"
	infraCache "returns-backend/internal/infrastructure/cache"
	"returns-backend/internal/infrastructure/database"
	"returns-backend/pkg/cache"
	pkgdb "returns-backend/pkg/database"
	"returns-backend/pkg/jwt"
	"returns-backend/pkg/metrics"

	inventoryJob "returns-backend/internal/domains/inventory/job"
	inventoryRepo "returns-backend/internal/domains/inventory/repository"
	inventoryService "returns-backend/internal/domains/inventory/service"
	orderRepo "returns-backend/internal/domains/order/repository"
	"returns-backend/internal/domains/payment/gateway"
	"returns-backend/internal/domains/payment/gateway/momo"
	stripegw "returns-backend/internal/domains/payment/gateway/stripe"
	"returns-backend/internal/domains/payment/gateway/vnpay"
	"returns-backend/internal/domains/payment/gateway/zalopay"
	paymentHandler "returns-backend/internal/domains/payment/handler"
	paymentRepo "returns-backend/internal/domains/payment/repository"
	paymentService "returns-backend/internal/domains/payment/service"
	returnsHandler "returns-backend/internal/domains/returns/handler"
	returnsJob "returns-backend/internal/domains/returns/job"
	returnsRepo "returns-backend/internal/domains/returns/repository"
	returnsService "returns-backend/internal/domains/returns/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của API và worker
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	TxManager   pkgdb.TxManager
	AsynqClient *asynq.Client
	Registry    *prometheus.Registry
	Metrics     *metrics.WorkflowMetrics

	// Repositories
	OrderRepo     orderRepo.OrderRepository
	InventoryRepo inventoryRepo.RepositoryInterface
	RefundRepo    paymentRepo.RefundRepoInterface
	ReturnRepo    returnsRepo.ReturnRepository

	// Services
	StockReconciler inventoryService.StockReconciler
	RefundGateway   gateway.RefundGateway
	RefundService   paymentService.RefundService
	ReturnService   returnsService.ReturnService

	// Handlers
	RefundHandler *paymentHandler.RefundHandler
	ReturnHandler *returnsHandler.ReturnHandler

	// Job handlers (worker)
	SkuStockSyncJob  *inventoryJob.SkuStockSyncHandler
	OverdueMethodJob *returnsJob.OverdueMethodHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer build dependency graph theo thứ tự:
// config → infrastructure → repositories → services → handlers
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")
	c := &Container{}

	// ========================================
	// STEP 1: CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	c.initRepositories()

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	if err := c.initServices(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	c.initHandlers()

	log.Info().Str("environment", cfg.App.Environment).Msg("✅ DI Container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	// Database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	c.TxManager = pkgdb.NewTxManager(db.Pool)

	// Redis
	redisClient := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := redisClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient.Client)

	// Asynq client dùng chung Redis
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	// JWT
	c.JWTManager = jwt.NewManager(c.Config.JWT.Secret, time.Duration(c.Config.JWT.AccessTokenExpiry)*time.Minute)

	// Metrics
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.NewWorkflowMetrics(c.Registry)

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool
	c.OrderRepo = orderRepo.NewOrderRepository(pool)
	c.InventoryRepo = inventoryRepo.NewRepository(pool)
	c.RefundRepo = paymentRepo.NewRefundRepository(pool)
	c.ReturnRepo = returnsRepo.NewReturnRepository(pool)
}

func (c *Container) initServices() error {
	gw, err := buildRefundGateway(c.Config)
	if err != nil {
		return fmt.Errorf("failed to build refund gateway: %w", err)
	}
	c.RefundGateway = gw

	c.StockReconciler = inventoryService.NewStockReconciler(c.InventoryRepo)

	c.RefundService = paymentService.NewRefundService(
		c.RefundRepo,
		c.OrderRepo,
		c.ReturnRepo,
		c.TxManager,
		c.RefundGateway,
		c.Config.Refund.GatewayTimeout,
		c.Metrics,
	)

	c.ReturnService = returnsService.NewReturnService(
		c.ReturnRepo,
		c.OrderRepo,
		c.RefundRepo,
		c.StockReconciler,
		c.TxManager,
		c.Cache,
		c.AsynqClient,
		c.Metrics,
		returnsService.Options{
			MethodDeadline: c.Config.Returns.MethodDeadline,
			EstimateTTL:    c.Config.Returns.EstimateTTL,
		},
	)
	return nil
}

func (c *Container) initHandlers() {
	c.RefundHandler = paymentHandler.NewRefundHandler(c.RefundService)
	c.ReturnHandler = returnsHandler.NewReturnHandler(c.ReturnService)

	c.SkuStockSyncJob = inventoryJob.NewSkuStockSyncHandler(c.InventoryRepo, c.Cache)
	c.OverdueMethodJob = returnsJob.NewOverdueMethodHandler(c.ReturnService)
}

// buildRefundGateway chỉ khởi tạo client cho provider đã cấu hình.
// Interface chỉ được gán khi client non-nil, tránh typed-nil trong Router.
func buildRefundGateway(cfg *config.Config) (*gateway.Router, error) {
	httpClient := &http.Client{Timeout: cfg.Refund.GatewayTimeout}

	var (
		momoRefunder    gateway.MomoRefunder
		vnpayRefunder   gateway.VNPayRefunder
		zalopayRefunder gateway.ZaloPayRefunder
		stripeRefunder  gateway.StripeRefunder
	)

	if cfg.Momo.PartnerCode != "" {
		client, err := momo.NewClient(momo.NewConfig(cfg.Momo.PartnerCode, cfg.Momo.AccessKey, cfg.Momo.SecretKey, cfg.Momo.APIURL), httpClient)
		if err != nil {
			return nil, fmt.Errorf("momo: %w", err)
		}
		momoRefunder = client
	}

	if cfg.VNPay.TmnCode != "" {
		client, err := vnpay.NewClient(vnpay.NewConfig(cfg.VNPay.TmnCode, cfg.VNPay.HashSecret, cfg.VNPay.APIURL), httpClient)
		if err != nil {
			return nil, fmt.Errorf("vnpay: %w", err)
		}
		vnpayRefunder = client
	}

	if cfg.ZaloPay.AppID != 0 {
		client, err := zalopay.NewClient(zalopay.NewConfig(strconv.Itoa(cfg.ZaloPay.AppID), cfg.ZaloPay.Key1, cfg.ZaloPay.APIURL), httpClient)
		if err != nil {
			return nil, fmt.Errorf("zalopay: %w", err)
		}
		zalopayRefunder = client
	}

	if cfg.Stripe.SecretKey != "" {
		client, err := stripegw.NewClient(cfg.Stripe.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("stripe: %w", err)
		}
		stripeRefunder = client
	}

	return gateway.NewRouter(momoRefunder, vnpayRefunder, zalopayRefunder, stripeRefunder), nil
}

// ========================================
// CLEANUP
// ========================================

// Cleanup đóng connections; an toàn khi gọi với container khởi tạo dở
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close asynq client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
