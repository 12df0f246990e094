package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"aitradegame/internal/domain"
)

// HistoryRecorder keeps the in-memory equity curve for every account and
// writes each accepted point through to storage. Appends are strictly
// monotonic per account; an out-of-order or inconsistent point is rejected
// with an IntegrityError rather than silently reordered.
type HistoryRecorder struct {
	mu      sync.RWMutex
	series  map[uuid.UUID][]domain.AccountValueSnapshot
	persist Persistence
}

// NewHistoryRecorder creates an empty recorder. persist may be nil.
func NewHistoryRecorder(persist Persistence) *HistoryRecorder {
	return &HistoryRecorder{
		series:  make(map[uuid.UUID][]domain.AccountValueSnapshot),
		persist: persist,
	}
}

// Record validates and appends one equity point. The point must carry a
// timestamp strictly after the account's latest point and must satisfy
// TotalValue == Cash + PositionsValue.
func (h *HistoryRecorder) Record(ctx context.Context, snapshot domain.AccountValueSnapshot) error {
	if !snapshot.TotalValue.Equal(snapshot.Cash.Add(snapshot.PositionsValue)) {
		return &domain.IntegrityError{
			Reason: fmt.Sprintf("snapshot for %s: total %s != cash %s + positions %s",
				snapshot.AccountID, snapshot.TotalValue, snapshot.Cash, snapshot.PositionsValue),
		}
	}

	h.mu.Lock()
	points := h.series[snapshot.AccountID]
	if n := len(points); n > 0 && !snapshot.Timestamp.After(points[n-1].Timestamp) {
		h.mu.Unlock()
		return &domain.IntegrityError{
			Reason: fmt.Sprintf("snapshot for %s at %s is not after latest %s",
				snapshot.AccountID, snapshot.Timestamp.Format(time.RFC3339), points[n-1].Timestamp.Format(time.RFC3339)),
		}
	}
	h.series[snapshot.AccountID] = append(points, snapshot)
	h.mu.Unlock()

	if h.persist != nil {
		if err := h.persist.RecordSnapshot(ctx, &snapshot); err != nil {
			log.Printf("ERROR: snapshot write-through for account %s: %v", snapshot.AccountID, err)
		}
	}
	return nil
}

// Restore loads persisted history for one account at startup, replacing any
// in-memory series. Points must already be in ascending timestamp order.
func (h *HistoryRecorder) Restore(accountID uuid.UUID, points []domain.AccountValueSnapshot) {
	series := make([]domain.AccountValueSnapshot, len(points))
	copy(series, points)
	h.mu.Lock()
	h.series[accountID] = series
	h.mu.Unlock()
}

// Range returns the account's points within [from, to], ascending. Zero
// bounds mean unbounded.
func (h *HistoryRecorder) Range(accountID uuid.UUID, from, to time.Time) []domain.AccountValueSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []domain.AccountValueSnapshot
	for _, p := range h.series[accountID] {
		if !from.IsZero() && p.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && p.Timestamp.After(to) {
			break
		}
		out = append(out, p)
	}
	return out
}

// Latest returns the account's most recent point, if any.
func (h *HistoryRecorder) Latest(accountID uuid.UUID) (domain.AccountValueSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	points := h.series[accountID]
	if len(points) == 0 {
		return domain.AccountValueSnapshot{}, false
	}
	return points[len(points)-1], true
}

// Drop discards the in-memory series for an account. Persisted rows are
// untouched; archived accounts keep their stored history.
func (h *HistoryRecorder) Drop(accountID uuid.UUID) {
	h.mu.Lock()
	delete(h.series, accountID)
	h.mu.Unlock()
}
