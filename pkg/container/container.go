package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"paygate-backend/internal/config"
	paymentHandler "paygate-backend/internal/domains/payment/handler"
	paymentRepo "paygate-backend/internal/domains/payment/repository"
	paymentService "paygate-backend/internal/domains/payment/service"
	webhookHandler "paygate-backend/internal/domains/webhook/handler"
	webhookRepo "paygate-backend/internal/domains/webhook/repository"
	webhookService "paygate-backend/internal/domains/webhook/service"
	infraCache "paygate-backend/internal/infrastructure/cache"
	"paygate-backend/internal/infrastructure/circuitbreaker"
	"paygate-backend/internal/infrastructure/database"
	"paygate-backend/internal/infrastructure/queue"
	"paygate-backend/pkg/cache"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is
// a singleton built once at startup, in dependency order.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config    *config.Config
	DB        *database.PostgresDB
	Cache     cache.Cache
	Queue     *queue.Client
	Inspector *asynq.Inspector
	Breakers  *circuitbreaker.Manager

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	PaymentRepo      paymentRepo.PaymentRepoInterface
	RefundRepo       paymentRepo.RefundRepoInterface
	IdempotencyRepo  paymentRepo.IdempotencyRepoInterface
	TxManager        paymentRepo.TransactionManager
	SubscriptionRepo webhookRepo.SubscriptionRepoInterface
	EventRepo        webhookRepo.EventRepoInterface

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	Outbox              webhookService.OutboxWriter
	SubscriptionService webhookService.SubscriptionServiceInterface
	Dispatcher          webhookService.DispatcherInterface
	PaymentService      paymentService.PaymentServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	PaymentHandler *paymentHandler.PaymentHandler
	WebhookHandler *webhookHandler.WebhookHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the whole graph in order: config, then
// infrastructure, then repositories, services, and handlers. Getting
// the order wrong means a nil dependency, so everything funnels
// through here.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Cache misses fall through to Postgres, so keep going
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}

	c.Cache = redisCache

	// ========================================
	// STEP 4: INITIALIZE QUEUE CLIENT
	// ========================================
	log.Println("📨 Initializing task queue client...")

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	c.Inspector = asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	c.Breakers = circuitbreaker.NewManager()
	log.Println("✅ Queue client initialized")

	// ========================================
	// STEP 5: INITIALIZE REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")

	c.initRepositories()
	log.Println("✅ Repositories initialized")

	// ========================================
	// STEP 6: INITIALIZE SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")

	c.initServices()
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 7: INITIALIZE HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")

	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.PaymentRepo = paymentRepo.NewPaymentRepository(pool)
	c.RefundRepo = paymentRepo.NewRefundRepository(pool)
	c.IdempotencyRepo = paymentRepo.NewIdempotencyRepository(pool)
	c.TxManager = paymentRepo.NewTransactionManager(pool)

	c.SubscriptionRepo = webhookRepo.NewSubscriptionRepository(pool)
	c.EventRepo = webhookRepo.NewEventRepository(pool)
}

func (c *Container) initServices() {
	c.Outbox = webhookService.NewOutboxWriter(c.SubscriptionRepo, c.EventRepo, c.Config.Webhook.MaxRetries)

	c.SubscriptionService = webhookService.NewSubscriptionService(
		c.SubscriptionRepo,
		c.EventRepo,
	)

	c.Dispatcher = webhookService.NewDispatcher(
		c.EventRepo,
		c.SubscriptionRepo,
		c.Queue,
		c.Breakers,
		c.Config.Webhook,
	)

	c.PaymentService = paymentService.NewPaymentService(
		c.PaymentRepo,
		c.RefundRepo,
		c.IdempotencyRepo,
		c.TxManager,
		c.Outbox,
		c.Queue,
		c.Cache,
		c.Config,
	)
}

func (c *Container) initHandlers() {
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService)
	c.WebhookHandler = webhookHandler.NewWebhookHandler(c.SubscriptionService)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases container resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		} else {
			log.Println("✅ Queue client closed")
		}
	}

	if c.Inspector != nil {
		if err := c.Inspector.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue inspector: %v", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
