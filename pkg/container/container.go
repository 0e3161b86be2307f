package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"qrlink-backend/internal/config"
	"qrlink-backend/internal/domains/link"
	linkHandler "qrlink-backend/internal/domains/link/handler"
	linkRepo "qrlink-backend/internal/domains/link/repository"
	linkService "qrlink-backend/internal/domains/link/service"
	"qrlink-backend/internal/domains/qrcode"
	qrHandler "qrlink-backend/internal/domains/qrcode/handler"
	"qrlink-backend/internal/domains/qrcode/render"
	qrService "qrlink-backend/internal/domains/qrcode/service"
	infraCache "qrlink-backend/internal/infrastructure/cache"
	"qrlink-backend/internal/infrastructure/database"
	"qrlink-backend/internal/infrastructure/qrencoder"
	"qrlink-backend/internal/infrastructure/storage"
	"qrlink-backend/pkg/cache"
	"qrlink-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của application
// Thứ tự khởi tạo: config → infrastructure → repository → service → handler
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB // nil khi STORE_DRIVER=sqlite
	SQLite      *gorm.DB             // nil khi STORE_DRIVER=postgres
	Cache       cache.Cache          // nil khi STORE_DRIVER=sqlite
	JWTManager  *jwt.Manager
	Storage     qrcode.ObjectStore
	AsynqClient *asynq.Client // nil khi SCAN_MODE=direct

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	LinkRepo link.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	Renderer    *render.Renderer
	QRService   qrcode.Service
	LogoService qrcode.LogoService
	LinkService link.Service
	Resolver    *linkService.Resolver

	// ========================================
	// HANDLER LAYER
	// ========================================
	LinkHandler     *linkHandler.LinkHandler
	RedirectHandler *linkHandler.RedirectHandler
	QRHandler       *qrHandler.QRHandler
	LogoHandler     *qrHandler.LogoHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer đọc config từ env rồi build dependency graph
func NewContainer() (*Container, error) {
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig build container từ config có sẵn (test dùng sqlite + memory storage)
// Lỗi giữa chừng sẽ cleanup những gì đã mở
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{
		Config:     cfg,
		JWTManager: jwt.NewManager(cfg.JWT.Secret),
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"store", c.initStore},
		{"storage", c.initStorage},
		{"queue", c.initQueue},
		{"services", c.initServices},
		{"handlers", c.initHandlers},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			c.Cleanup()
			return nil, fmt.Errorf("failed to init %s: %w", step.name, err)
		}
	}

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

// initStore mở Link Store theo STORE_DRIVER và tạo LinkRepo
func (c *Container) initStore() error {
	switch c.Config.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := database.NewSQLiteDB(c.Config.Store.SQLitePath)
		if err != nil {
			return err
		}
		c.SQLite = db

		if err := linkRepo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}

		c.LinkRepo = linkRepo.NewSQLiteRepository(db)
		log.Println("✅ SQLite store ready")
		return nil

	default:
		return c.initPostgres()
	}
}

func (c *Container) initPostgres() error {
	log.Println("🗄️  Connecting to PostgreSQL...")

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
	c.DB = db

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("✅ Database connected")

	// Redis failure không critical, slug lookup đi thẳng DB
	log.Println("🔴 Connecting to Redis...")
	redisCache := infraCache.NewRedisCache(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(ctx); err != nil {
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	c.LinkRepo = linkRepo.NewPostgresRepository(db.Pool, c.Cache, c.Config.Redis.SlugCacheTTL)
	return nil
}

// initStorage: MinIO cho môi trường thật, RAM khi MINIO_ENABLED=false
func (c *Container) initStorage() error {
	if !c.Config.MinIO.Enabled {
		baseURL := fmt.Sprintf("%s/%s", c.Config.App.PublicBaseURL, c.Config.MinIO.Bucket)
		c.Storage = storage.NewMemoryStorage(baseURL)
		log.Println("⚠️  MinIO disabled, logos are kept in memory")
		return nil
	}

	log.Println("🪣 Connecting to MinIO...")
	minioStorage, err := storage.NewMinIOStorage(c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init minio: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ MinIO connected")
	return nil
}

// initQueue chỉ cần khi scan đi qua worker
func (c *Container) initQueue() error {
	if c.Config.Scan.Mode != config.ScanModeQueue {
		return nil
	}
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	log.Println("✅ Asynq client ready (scan mode: queue)")
	return nil
}

func (c *Container) initServices() error {
	// Logo service là ImageLoader của encoder (PNG export cần bytes của logo)
	c.LogoService = qrService.NewLogoService(c.Storage, storage.NewImageProcessor())

	encoder := qrencoder.NewEncoder(c.LogoService)
	c.Renderer = render.NewRenderer(encoder)
	c.QRService = qrService.NewQRService(c.Renderer, c.Config.App.PublicBaseURL)

	c.LinkService = linkService.NewLinkService(
		c.LinkRepo,
		c.QRService,
		c.LogoService,
		c.Config.App.PublicBaseURL,
	)

	var recorder link.ScanRecorder = linkService.NewDirectScanRecorder(c.LinkRepo)
	if c.AsynqClient != nil {
		recorder = linkService.NewQueueScanRecorder(c.AsynqClient)
	}
	c.Resolver = linkService.NewResolver(c.LinkRepo, recorder)

	return nil
}

func (c *Container) initHandlers() error {
	c.LinkHandler = linkHandler.NewLinkHandler(c.LinkService)
	c.RedirectHandler = linkHandler.NewRedirectHandler(c.Resolver)
	c.QRHandler = qrHandler.NewQRHandler(c.QRService)
	c.LogoHandler = qrHandler.NewLogoHandler(c.LogoService)
	return nil
}

// ========================================
// HEALTH
// ========================================

// PingStore kiểm tra Link Store còn phản hồi
func (c *Container) PingStore(ctx context.Context) error {
	switch {
	case c.DB != nil:
		return c.DB.HealthCheck(ctx)
	case c.SQLite != nil:
		sqlDB, err := c.SQLite.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	default:
		return fmt.Errorf("link store is not initialized")
	}
}

// ========================================
// CLEANUP
// ========================================

// Cleanup chờ scan đang chạy rồi đóng resources theo thứ tự ngược lúc mở
// Gọi nhiều lần vẫn an toàn
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.Resolver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Resolver.Drain(ctx); err != nil {
			log.Printf("⚠️  Pending scans not drained: %v", err)
		}
		cancel()
	}

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
		c.AsynqClient = nil
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
		c.Cache = nil
	}

	if c.DB != nil {
		_ = c.DB.Close()
		c.DB = nil
	}

	if c.SQLite != nil {
		if err := database.CloseSQLiteDB(c.SQLite); err != nil {
			log.Printf("⚠️  Failed to close SQLite: %v", err)
		}
		c.SQLite = nil
	}

	log.Println("✅ Container cleanup completed")
}
