package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"aitradegame/internal/usecase"
)

// Scheduler drives the periodic work: the trading cycle on the configured
// frequency, the equity snapshot tick, and the market history sampler.
type Scheduler struct {
	cron            *cron.Cron
	tradingService  *usecase.TradingService
	historyRecorder HistoryCollector
	tradingEvery    time.Duration
	snapshotEvery   time.Duration
}

// HistoryCollector samples market prices into durable history.
type HistoryCollector interface {
	Collect(ctx context.Context) error
}

// NewScheduler creates a new scheduler. historyRecorder may be nil when the
// process does not collect market history.
func NewScheduler(tradingService *usecase.TradingService, historyRecorder HistoryCollector, tradingEvery, snapshotEvery time.Duration) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		tradingService:  tradingService,
		historyRecorder: historyRecorder,
		tradingEvery:    tradingEvery,
		snapshotEvery:   snapshotEvery,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	log.Printf("Starting scheduler... [trading: every %s, snapshots: every %s]", s.tradingEvery, s.snapshotEvery)

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.tradingEvery), func() {
		ctx := context.Background()
		log.Println("[CRON] Trading cycle triggered")
		s.tradingService.RunAll(ctx)
		// snapshot right after trading so the curve reflects the new book
		s.tradingService.SnapshotAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to register trading job: %w", err)
	}

	_, err = s.cron.AddFunc(fmt.Sprintf("@every %s", s.snapshotEvery), func() {
		s.tradingService.SnapshotAll(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register snapshot job: %w", err)
	}

	if s.historyRecorder != nil {
		_, err = s.cron.AddFunc(fmt.Sprintf("@every %s", s.snapshotEvery), func() {
			if err := s.historyRecorder.Collect(context.Background()); err != nil {
				log.Printf("ERROR: market history collection failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to register history job: %w", err)
		}
	}

	s.cron.Start()
	log.Println("[OK] Scheduler started successfully")
	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cron.Stop()
	log.Println("[OK] Scheduler stopped")
}
