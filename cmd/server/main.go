package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sat-search.backend/internal/config"
	"sat-search.backend/internal/infrastructure/ecash"
	"sat-search.backend/internal/infrastructure/jobs"
	"sat-search.backend/internal/infrastructure/lightning"
	"sat-search.backend/internal/infrastructure/models"
	"sat-search.backend/internal/infrastructure/price"
	"sat-search.backend/internal/infrastructure/repositories"
	"sat-search.backend/internal/infrastructure/search"
	"sat-search.backend/internal/interfaces/http/handlers"
	"sat-search.backend/internal/interfaces/http/middleware"
	"sat-search.backend/internal/usecases"
	"sat-search.backend/pkg/logger"
	"sat-search.backend/pkg/redis"
)

const priceSourceURL = "https://mempool.space/api/v1/prices"

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg *config.Config) (*gorm.DB, error) {
		if cfg.Database.UsePostgres() {
			return gorm.Open(postgres.New(postgres.Config{
				DSN:                  cfg.Database.URL(),
				PreferSimpleProtocol: true,
			}), &gorm.Config{
				PrepareStmt: false,
			})
		}
		return gorm.Open(sqlite.Open(cfg.Database.SQLitePath), &gorm.Config{})
	}
	newRedeemer = func(mintURL, walletDir string) (ecash.Redeemer, error) {
		return ecash.NewWalletRedeemer(mintURL, walletDir)
	}
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(
		&models.MintQuote{},
		&models.MeltQuote{},
		&models.SearchCounter{},
		&models.SearchEvent{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("✅ Database connected and migrated")

	// Initialize repositories
	mintQuoteRepo := repositories.NewMintQuoteRepository(db)
	meltQuoteRepo := repositories.NewMeltQuoteRepository(db)
	counterRepo := repositories.NewSearchCounterRepository(db)
	eventRepo := repositories.NewSearchEventRepository(db)
	uow := repositories.NewUnitOfWork(db)

	if err := counterRepo.EnsureRow(context.Background()); err != nil {
		return fmt.Errorf("failed to seed search counter: %w", err)
	}

	// Initialize infrastructure clients
	lnClient := lightning.NewLnbitsClient(
		cfg.Lightning.URL,
		cfg.Lightning.AdminKey,
		cfg.Lightning.InvoiceKey,
		cfg.Lightning.Timeout,
	)

	redeemer, err := newRedeemer(cfg.Mint.URL, cfg.Mint.WalletDir)
	if err != nil {
		return fmt.Errorf("failed to load ecash wallet: %w", err)
	}

	provider := search.NewKagiClient(cfg.Search.APIURL, cfg.Search.AuthToken, cfg.Search.Timeout)

	var converter price.Converter
	var watcher *price.Watcher
	if cfg.Pricing.CostPerSearchCents > 0 {
		watcher = price.NewWatcher(priceSourceURL, cfg.Pricing.PriceRefresh)
		if err := watcher.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to fetch btc/usd rate: %w", err)
		}
		defer watcher.Stop()
		converter = watcher
	}

	// Initialize usecases
	mintQuoteUsecase := usecases.NewMintQuoteUsecase(
		mintQuoteRepo, lnClient, cfg.Quote.Expiry, cfg.Server.Name,
		cfg.Limits.MintMinSats, cfg.Limits.MintMaxSats,
	)
	meltUsecase := usecases.NewMeltUsecase(
		meltQuoteRepo, lnClient, redeemer, cfg.Quote.Expiry,
		cfg.Fee.PercentReserve, cfg.Fee.MinReserveSats,
		cfg.Limits.MeltMinSats, cfg.Limits.MeltMaxSats,
	)
	searchUsecase := usecases.NewSearchUsecase(
		counterRepo, eventRepo, uow, redeemer, provider, mintQuoteUsecase, converter,
		cfg.Pricing.PricePerSearch, cfg.Pricing.CostPerSearchCents, cfg.Quote.Expiry,
	)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchUsecase)
	mintQuoteHandler := handlers.NewMintQuoteHandler(mintQuoteUsecase)
	meltQuoteHandler := handlers.NewMeltQuoteHandler(meltUsecase)
	infoHandler := handlers.NewInfoHandler(cfg.Server.Name, cfg.Server.URL, cfg.Mint.URL, searchUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pollerJob := jobs.NewMintQuotePollerJob(mintQuoteRepo, lnClient, cfg.Quote.PollInterval)
	reconcilerJob := jobs.NewMeltReconcilerJob(meltQuoteRepo, meltUsecase, cfg.Quote.ReconcileInterval)
	expiryJob := jobs.NewQuoteExpiryJob(mintQuoteRepo, meltQuoteRepo, cfg.Quote.PollInterval, cfg.Quote.RetentionWindow)
	go pollerJob.Start(ctx)
	go reconcilerJob.Start(ctx)
	go expiryJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())

	registerHealthRoute(r)
	registerRoutes(r, routeDeps{
		searchHandler:    searchHandler,
		mintQuoteHandler: mintQuoteHandler,
		meltQuoteHandler: meltQuoteHandler,
		infoHandler:      infoHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// Graceful shutdown: stop the listener so in-flight requests drain, then
	// stop the background jobs
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("❌ Server shutdown error: %v", err)
		}

		pollerJob.Stop()
		reconcilerJob.Stop()
		expiryJob.Stop()
		cancel()
	}()

	log.Printf("🚀 %s starting on port %s", cfg.Server.Name, cfg.Server.Port)
	log.Printf("🔍 Search: http://localhost:%s/search?q=", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(srv); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
