package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"problem-hunt.backend/internal/config"
	"problem-hunt.backend/internal/domain/entities"
	"problem-hunt.backend/internal/infrastructure/blockchain"
	"problem-hunt.backend/internal/infrastructure/jobs"
	"problem-hunt.backend/internal/infrastructure/repositories"
	"problem-hunt.backend/internal/interfaces/http/handlers"
	"problem-hunt.backend/internal/usecases"
	"problem-hunt.backend/pkg/jwt"
	"problem-hunt.backend/pkg/logger"
	"problem-hunt.backend/pkg/redis"
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
	defer logger.Sync()
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	// Initialize nonce store for sign-in challenges
	nonceStore := redis.NewNonceStore(cfg.Auth.ChallengeTTL)

	// Build the chain adapter registry from configuration
	registry, err := buildAdapterRegistry(cfg)
	if err != nil {
		return fmt.Errorf("failed to build chain adapters: %w", err)
	}

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, walletRepo, jwtService, nonceStore, registry, cfg.Auth.ChallengeTTL)
	walletUsecase := usecases.NewWalletUsecase(walletRepo)
	orderUsecase := usecases.NewOrderUsecase(orderRepo, walletRepo, cfg.Payment.OrderTTL)
	verifierUsecase := usecases.NewPaymentVerifierUsecase(orderRepo, registry, cfg.Payment.Tolerance)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	walletHandler := handlers.NewWalletHandler(walletUsecase)
	orderHandler := handlers.NewOrderHandler(orderUsecase, verifierUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiryJob := jobs.NewOrderExpiryJob(orderRepo, 30*time.Second)
	go expiryJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewareStack()...)

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    authHandler,
		walletHandler:  walletHandler,
		orderHandler:   orderHandler,
		authMiddleware: newAuthMiddleware(jwtService),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		expiryJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Problem Hunt Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// buildAdapterRegistry registers one adapter per configured chain.
func buildAdapterRegistry(cfg *config.Config) (*blockchain.Registry, error) {
	registry := blockchain.NewRegistry()
	for name, chainCfg := range cfg.Chains {
		chain := entities.Chain(name)
		switch {
		case chain.IsEVM():
			adapter, err := blockchain.NewEVMAdapter(chain, chainCfg)
			if err != nil {
				return nil, fmt.Errorf("chain %s: %w", chain, err)
			}
			registry.Register(adapter)
		case chain == entities.ChainSolana:
			registry.Register(blockchain.NewSolanaAdapter(chainCfg))
		default:
			return nil, fmt.Errorf("chain %s: no adapter available", chain)
		}
	}
	return registry, nil
}
