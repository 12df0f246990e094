package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitradegame/internal/domain"
)

func equityPoint(accountID uuid.UUID, at time.Time, cash, positions string) domain.AccountValueSnapshot {
	return domain.AccountValueSnapshot{
		AccountID:      accountID,
		Timestamp:      at,
		Cash:           d(cash),
		PositionsValue: d(positions),
		TotalValue:     d(cash).Add(d(positions)),
	}
}

func TestHistoryRecordAndRange(t *testing.T) {
	t.Parallel()
	h := NewHistoryRecorder(nil)
	id := uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Record(ctx, equityPoint(id, base.Add(time.Duration(i)*time.Hour), "10000", "0")))
	}

	all := h.Range(id, time.Time{}, time.Time{})
	assert.Len(t, all, 5)

	window := h.Range(id, base.Add(time.Hour), base.Add(3*time.Hour))
	require.Len(t, window, 3)
	assert.Equal(t, base.Add(time.Hour), window[0].Timestamp)

	latest, ok := h.Latest(id)
	require.True(t, ok)
	assert.Equal(t, base.Add(4*time.Hour), latest.Timestamp)
}

func TestHistoryRejectsOutOfOrder(t *testing.T) {
	t.Parallel()
	h := NewHistoryRecorder(nil)
	id := uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, equityPoint(id, base.Add(time.Hour), "10000", "0")))

	var ierr *domain.IntegrityError
	// earlier than latest
	err := h.Record(ctx, equityPoint(id, base, "10000", "0"))
	require.ErrorAs(t, err, &ierr)
	// equal to latest
	err = h.Record(ctx, equityPoint(id, base.Add(time.Hour), "10000", "0"))
	require.ErrorAs(t, err, &ierr)

	// the series is unchanged
	assert.Len(t, h.Range(id, time.Time{}, time.Time{}), 1)
}

func TestHistoryRejectsBrokenInvariant(t *testing.T) {
	t.Parallel()
	h := NewHistoryRecorder(nil)
	point := equityPoint(uuid.New(), time.Now(), "5000", "1000")
	point.TotalValue = d("9999")

	var ierr *domain.IntegrityError
	require.ErrorAs(t, h.Record(context.Background(), point), &ierr)
}

func TestHistoryPerAccountIsolation(t *testing.T) {
	t.Parallel()
	h := NewHistoryRecorder(nil)
	a, b := uuid.New(), uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, equityPoint(a, base.Add(2*time.Hour), "10000", "0")))
	// an older timestamp is fine on a different account
	require.NoError(t, h.Record(ctx, equityPoint(b, base, "8000", "0")))

	assert.Len(t, h.Range(a, time.Time{}, time.Time{}), 1)
	assert.Len(t, h.Range(b, time.Time{}, time.Time{}), 1)
}

func TestHistoryRestoreAndDrop(t *testing.T) {
	t.Parallel()
	h := NewHistoryRecorder(nil)
	id := uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	h.Restore(id, []domain.AccountValueSnapshot{
		equityPoint(id, base, "10000", "0"),
		equityPoint(id, base.Add(time.Hour), "9500", "600"),
	})
	assert.Len(t, h.Range(id, time.Time{}, time.Time{}), 2)

	// appends continue after the restored tail
	require.NoError(t, h.Record(context.Background(), equityPoint(id, base.Add(2*time.Hour), "9500", "700")))

	h.Drop(id)
	assert.Empty(t, h.Range(id, time.Time{}, time.Time{}))
	_, ok := h.Latest(id)
	assert.False(t, ok)
}
