package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"aitradegame/configs"
	"aitradegame/internal/adapter"
	"aitradegame/internal/database"
	delivery "aitradegame/internal/delivery/http"
	"aitradegame/internal/domain"
	"aitradegame/internal/engine"
	"aitradegame/internal/infra"
	"aitradegame/internal/repository"
	"aitradegame/internal/service"
	"aitradegame/internal/usecase"
	"aitradegame/internal/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize credential sealing
	sealer, err := utils.NewKeySealer(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize credential sealing: %v", err)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	marketHistoryRepo := repository.NewMarketHistoryRepository(db)
	persistence := repository.NewLedgerPersistence(db)

	// Initialize the ledger engine
	store := engine.NewStore(persistence)
	processor := engine.NewTradeProcessor(store, cfg.Trading.FeeRate)
	history := engine.NewHistoryRecorder(persistence)

	restoreLedgers(ctx, store, history, accountRepo, positionRepo, snapshotRepo)

	// Initialize the reasoning service bridge
	advisor := adapter.NewAdvisorBridge(cfg.Advisor.URL)
	log.Println("Checking reasoning service health...")
	if bridge, ok := advisor.(*adapter.AdvisorBridge); ok {
		if err := bridge.HealthCheck(ctx); err != nil {
			log.Printf("WARNING: reasoning service is not available: %v", err)
			log.Println("Scheduler will continue, but trading cycles will fail until it is up")
		} else {
			log.Println("✓ Reasoning service is healthy")
		}
	}

	// Initialize services
	priceService := service.NewMarketPriceService(cfg.Market.APIURL, cfg.Market.CacheTTL)
	marketHistoryService := service.NewMarketHistoryService(priceService, marketHistoryRepo, cfg.Market.Symbols)

	tradingService := usecase.NewTradingService(
		store,
		processor,
		history,
		priceService,
		advisor,
		sealer,
		conversationRepo,
		cfg.Market.Symbols,
	)

	// Start the scheduler
	scheduler := infra.NewScheduler(tradingService, marketHistoryService, cfg.Trading.CycleEvery, cfg.Trading.SnapshotEvery)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true

	accountHandler := delivery.NewAccountHandler(store, history, tradingService, sealer, tradeRepo, conversationRepo)
	portfolioHandler := delivery.NewPortfolioHandler(tradingService)
	tradeHandler := delivery.NewTradeHandler(tradingService)

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AccountHandler:   accountHandler,
		PortfolioHandler: portfolioHandler,
		TradeHandler:     tradeHandler,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 AI Trade Game API starting on %s", addr)
	log.Printf("📊 Environment: %s", cfg.Server.Env)
	log.Printf("💰 Fee rate: %s | Symbols: %v", cfg.Trading.FeeRate, cfg.Market.Symbols)
	log.Printf("⏱  Trading cycle: every %s | Snapshots: every %s", cfg.Trading.CycleEvery, cfg.Trading.SnapshotEvery)
	log.Println("========================================")

	// Run server in goroutine
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server exited gracefully")
}

// restoreLedgers rebuilds the in-memory ledgers and equity curves from the
// database at startup. Failures here are fatal for individual accounts but
// not for the process: a partly restored account is worse than a missing one.
func restoreLedgers(
	ctx context.Context,
	store *engine.Store,
	history *engine.HistoryRecorder,
	accountRepo domain.AccountRepository,
	positionRepo domain.PositionRepository,
	snapshotRepo domain.SnapshotRepository,
) {
	accounts, err := accountRepo.GetActive(ctx)
	if err != nil {
		log.Printf("WARNING: failed to load accounts, starting empty: %v", err)
		return
	}

	restored := 0
	for _, account := range accounts {
		positions, err := positionRepo.GetByAccount(ctx, account.ID)
		if err != nil {
			log.Printf("ERROR: skipping account %s, failed to load positions: %v", account.ID, err)
			continue
		}
		store.Restore(account, positions)

		points, err := snapshotRepo.Range(ctx, account.ID, time.Time{}, time.Time{}, 0)
		if err != nil {
			log.Printf("WARNING: failed to load equity history for %s: %v", account.ID, err)
		} else {
			history.Restore(account.ID, points)
		}
		restored++
	}

	log.Printf("[OK] Restored %d/%d accounts from database", restored, len(accounts))
}
