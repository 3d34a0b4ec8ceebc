package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stark-ops.backend/internal/config"
	pgdatasource "stark-ops.backend/internal/infrastructure/datasources/postgres"
	"stark-ops.backend/internal/infrastructure/jobs"
	"stark-ops.backend/internal/infrastructure/models"
	"stark-ops.backend/internal/infrastructure/repositories"
	"stark-ops.backend/internal/interfaces/http/handlers"
	"stark-ops.backend/internal/interfaces/http/middleware"
	"stark-ops.backend/internal/starknet"
	"stark-ops.backend/internal/usecases"
	"stark-ops.backend/pkg/jwt"
	"stark-ops.backend/pkg/logger"
	"stark-ops.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	probeDB   = pgdatasource.NewConnection
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis (backs the ABI cache)
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if probe, perr := probeDB(cfg.Database); perr != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", perr)
	} else {
		probe.Close()
		log.Println("✅ Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(&models.Contract{}, &models.ContractTransaction{}); err != nil {
			log.Printf("⚠️ Auto-migration failed: %v", err)
		}
	}

	// Initialize JWT service
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.SessionExpiry)

	// Initialize repositories
	contractRepo := repositories.NewContractRepository(db)
	txRepo := repositories.NewTransactionRepository(db)

	// Initialize the starknet CLI runner and status poller
	runner := starknet.NewCLI(cfg.StarkNet.Binary,
		starknet.NewEndpoints(cfg.StarkNet.GatewayURL, cfg.StarkNet.FeederGateway))
	poller := starknet.NewPoller(runner, cfg.StarkNet.PollInterval, cfg.StarkNet.PollMaxAttempts)
	abiCache := redis.NewABICache(cfg.Redis.AbiTTL)

	// Initialize usecases
	contractUsecase := usecases.NewContractUsecase(contractRepo, txRepo, runner, poller, abiCache)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(jwtService, cfg.Auth.APIKeyHash)
	contractHandler := handlers.NewContractHandler(contractUsecase)

	// Auth middleware accepts either the raw API key or a session token
	authMiddleware := middleware.AuthMiddleware(jwtService, cfg.Auth.APIKeyHash)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshJob := jobs.NewTransactionStatusRefreshJob(txRepo, poller, cfg.StarkNet.PollInterval)
	go refreshJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:     authHandler,
		contractHandler: contractHandler,
		authMiddleware:  authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		refreshJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 StarkOps Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
