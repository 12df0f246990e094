package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"aitradegame/configs"
	"aitradegame/internal/database"
	"aitradegame/internal/infra"
	"aitradegame/internal/repository"
	"aitradegame/internal/service"
)

// Standalone market history collector and API. Runs separately from the main
// trading service so chart backfill keeps working through trading downtime.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()
	ctx := context.Background()

	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	priceService := service.NewMarketPriceService(cfg.Market.APIURL, cfg.Market.CacheTTL)
	historyService := service.NewMarketHistoryService(priceService, repository.NewMarketHistoryRepository(db), cfg.Market.Symbols)

	// Collect on the snapshot cadence
	cronScheduler := cron.New()
	_, err = cronScheduler.AddFunc(fmt.Sprintf("@every %s", cfg.Trading.SnapshotEvery), func() {
		if err := historyService.Collect(context.Background()); err != nil {
			log.Printf("ERROR: market history collection failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to add collection cron job: %v", err)
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// HTTP router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", handleHealth(db))
	r.Get("/api/symbols", handleSymbols(historyService))
	r.Get("/api/history/{symbol}", handleHistory(historyService))

	port := os.Getenv("HISTORY_PORT")
	if port == "" {
		port = "8081"
	}
	addr := fmt.Sprintf(":%s", port)
	log.Printf("🚀 Market history service starting on %s", addr)
	log.Printf("📈 Tracking symbols: %v (every %s)", cfg.Market.Symbols, cfg.Trading.SnapshotEvery)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down market history service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server exited gracefully")
}

func handleHealth(db interface{ Ping(context.Context) error }) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"service":   "aitradegame-history",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func handleSymbols(historyService *service.MarketHistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"symbols": historyService.Symbols(),
		})
	}
}

func handleHistory(historyService *service.MarketHistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		var start, end time.Time
		if raw := r.URL.Query().Get("start"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'start' timestamp"})
				return
			}
			start = parsed
		}
		if raw := r.URL.Query().Get("end"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'end' timestamp"})
				return
			}
			end = parsed
		}
		limit := 500
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit <= 0 {
				limit = 500
			}
		}

		points, err := historyService.History(r.Context(), symbol, start, end, limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"symbol": symbol,
			"points": points,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR: failed to encode response: %v", err)
	}
}
