// Package main provides the main entry point for the collab market API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/collab-market/app/handlers"
	"github.com/amirphl/collab-market/app/middleware"
	"github.com/amirphl/collab-market/app/router"
	"github.com/amirphl/collab-market/app/scheduler"
	"github.com/amirphl/collab-market/app/services"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/config"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting collab market application...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	// workers stop after the server so in-flight requests can still enqueue notifications
	for i := len(app.stopFuncs) - 1; i >= 0; i-- {
		app.stopFuncs[i]()
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.SlowQueryLog {
		gormCfg.Logger = logger.New(log.New(os.Stdout, "", log.LstdFlags), logger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&models.Brand{},
			&models.Creator{},
			&models.Campaign{},
			&models.Invitation{},
			&models.ContentSubmission{},
			&models.Notification{},
			&models.AuditLog{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("Database schema migrated")
	}

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity.
// Returns a nil client when the cache is disabled.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis to surface connectivity issues
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationPublisher selects where outbox rows are relayed
func initializeNotificationPublisher(cfg config.EventsConfig, logOutput io.Writer) (services.NotificationPublisher, error) {
	switch cfg.Provider {
	case "kafka":
		p, err := services.NewKafkaNotificationPublisher(cfg.KafkaBrokers, cfg.NotificationTopic, cfg.WriteTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		log.Printf("Notification events published to kafka topic %s", cfg.NotificationTopic)
		return p, nil
	default:
		return services.NewLogNotificationPublisher(logOutput), nil
	}
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	brandRepo := repository.NewBrandRepository(db)
	creatorRepo := repository.NewCreatorRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	submissionRepo := repository.NewContentSubmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Campaign mutations are serialized per campaign across instances when redis is available
	var locker businessflow.CampaignLocker
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
		locker = businessflow.NewRedisCampaignLocker(rc, cfg.Cache.RedisPrefix, cfg.Matching.CampaignLockTTL, cfg.Matching.CampaignLockWait)
	} else {
		log.Println("Redis disabled: using in-process campaign locks (single instance only)")
		locker = businessflow.NewLocalCampaignLocker(cfg.Matching.CampaignLockWait)
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	campaignFlow := businessflow.NewCampaignFlow(campaignRepo, brandRepo, invitationRepo, submissionRepo, notificationRepo, auditRepo, locker, db)
	matchFlow := businessflow.NewMatchFlow(campaignRepo, creatorRepo, invitationRepo, rc, cfg.Cache, cfg.Matching)
	invitationFlow := businessflow.NewInvitationFlow(campaignRepo, brandRepo, creatorRepo, invitationRepo, notificationRepo, auditRepo, locker, db)
	contentFlow := businessflow.NewContentFlow(campaignRepo, creatorRepo, invitationRepo, submissionRepo, notificationRepo, auditRepo, locker, db)
	notificationFlow := businessflow.NewNotificationFlow(notificationRepo)

	// Initialize handlers
	v := handlers.NewValidator()
	h := router.Handlers{
		Campaign:     handlers.NewCampaignHandler(campaignFlow, v),
		Match:        handlers.NewMatchHandler(matchFlow, v),
		Invitation:   handlers.NewInvitationHandler(invitationFlow, v),
		Content:      handlers.NewContentHandler(contentFlow, v),
		Notification: handlers.NewNotificationHandler(notificationFlow),
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	appRouter := router.NewFiberRouter(cfg, h, authMiddleware)

	if cfg.Scheduler.RelayEnabled {
		logOutput, logCloser := services.NewLogWriter(cfg.Logging)
		publisher, err := initializeNotificationPublisher(cfg.Events, logOutput)
		if err != nil {
			_ = logCloser.Close()
			return nil, err
		}

		relay := scheduler.NewNotificationRelay(notificationRepo, publisher, logOutput, cfg.Scheduler.RelayInterval, cfg.Scheduler.RelayBatchSize)
		stopRelay := relay.Start(context.Background())
		stopFuncs = append(stopFuncs, func() {
			stopRelay()
			if err := publisher.Close(); err != nil {
				log.Printf("Failed to close notification publisher: %v", err)
			}
			_ = logCloser.Close()
		})
		log.Printf("Notification relay started (interval=%s batch=%d)", cfg.Scheduler.RelayInterval, cfg.Scheduler.RelayBatchSize)
	}

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
