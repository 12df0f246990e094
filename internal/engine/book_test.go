package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitradegame/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPositionBookUpsertNew(t *testing.T) {
	t.Parallel()
	b := NewPositionBook()
	now := time.Now()

	err := b.Upsert("BTC", domain.SideLong, d("2"), d("50000"), d("10"), now)
	require.NoError(t, err)

	pos, ok := b.Get("BTC", domain.SideLong)
	require.True(t, ok)
	assert.True(t, pos.Quantity.Equal(d("2")))
	assert.True(t, pos.AvgEntryPrice.Equal(d("50000")))
	assert.True(t, pos.Leverage.Equal(d("10")))
	assert.Equal(t, 1, b.Len())
}

func TestPositionBookUpsertWeightedAverage(t *testing.T) {
	t.Parallel()
	b := NewPositionBook()
	now := time.Now()

	require.NoError(t, b.Upsert("ETH", domain.SideLong, d("1"), d("3000"), d("5"), now))
	require.NoError(t, b.Upsert("ETH", domain.SideLong, d("3"), d("3400"), d("5"), now))

	pos, ok := b.Get("ETH", domain.SideLong)
	require.True(t, ok)
	// (1*3000 + 3*3400) / 4 = 3300
	assert.True(t, pos.AvgEntryPrice.Equal(d("3300")), "got %s", pos.AvgEntryPrice)
	assert.True(t, pos.Quantity.Equal(d("4")))
}

func TestPositionBookUpsertLeverageMismatch(t *testing.T) {
	t.Parallel()
	b := NewPositionBook()
	now := time.Now()

	require.NoError(t, b.Upsert("BTC", domain.SideLong, d("1"), d("50000"), d("10"), now))
	err := b.Upsert("BTC", domain.SideLong, d("1"), d("51000"), d("5"), now)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "leverage", verr.Field)

	// the rejected add must not touch the stored position
	pos, _ := b.Get("BTC", domain.SideLong)
	assert.True(t, pos.Quantity.Equal(d("1")))
	assert.True(t, pos.AvgEntryPrice.Equal(d("50000")))
}

func TestPositionBookHedgedSides(t *testing.T) {
	t.Parallel()
	b := NewPositionBook()
	now := time.Now()

	require.NoError(t, b.Upsert("BTC", domain.SideLong, d("2"), d("50000"), d("10"), now))
	require.NoError(t, b.Upsert("BTC", domain.SideShort, d("1"), d("51000"), d("3"), now))

	assert.Equal(t, 2, b.Len())
	net := b.NetBySymbol()
	require.Len(t, net, 1)
	assert.True(t, net[0].Long.Equal(d("2")))
	assert.True(t, net[0].Short.Equal(d("1")))
}

func TestPositionBookReduce(t *testing.T) {
	t.Parallel()
	now := time.Now()

	tests := []struct {
		name      string
		held      string
		reduce    string
		wantLeft  string
		wantGone  bool
		wantError bool
	}{
		{name: "partial", held: "4", reduce: "1.5", wantLeft: "2.5"},
		{name: "full removes entry", held: "4", reduce: "4", wantGone: true},
		{name: "over-reduce rejected", held: "4", reduce: "5", wantError: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := NewPositionBook()
			require.NoError(t, b.Upsert("SOL", domain.SideShort, d(tc.held), d("150"), d("2"), now))

			err := b.Reduce("SOL", domain.SideShort, d(tc.reduce), now)
			if tc.wantError {
				var ierr *domain.IntegrityError
				require.ErrorAs(t, err, &ierr)
				return
			}
			require.NoError(t, err)

			pos, ok := b.Get("SOL", domain.SideShort)
			if tc.wantGone {
				assert.False(t, ok)
				assert.Equal(t, 0, b.Len())
				return
			}
			require.True(t, ok)
			assert.True(t, pos.Quantity.Equal(d(tc.wantLeft)), "got %s", pos.Quantity)
		})
	}
}

func TestPositionBookReduceMissing(t *testing.T) {
	t.Parallel()
	b := NewPositionBook()

	err := b.Reduce("BTC", domain.SideLong, d("1"), time.Now())
	var nerr *domain.NoSuchPositionError
	require.ErrorAs(t, err, &nerr)
}

func TestPositionBookAllOrdering(t *testing.T) {
	t.Parallel()
	b := NewPositionBook()
	now := time.Now()

	require.NoError(t, b.Upsert("ETH", domain.SideShort, d("1"), d("3000"), d("2"), now))
	require.NoError(t, b.Upsert("BTC", domain.SideLong, d("1"), d("50000"), d("2"), now))
	require.NoError(t, b.Upsert("ETH", domain.SideLong, d("1"), d("3100"), d("2"), now))

	all := b.All()
	require.Len(t, all, 3)
	assert.Equal(t, "BTC", all[0].Symbol)
	assert.Equal(t, "ETH", all[1].Symbol)
	assert.Equal(t, domain.SideLong, all[1].Side)
	assert.Equal(t, domain.SideShort, all[2].Side)
}
