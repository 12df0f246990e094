package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitradegame/internal/domain"
)

func testSnapshot(cash string, positions ...domain.Position) LedgerSnapshot {
	return LedgerSnapshot{
		AccountID:      uuid.New(),
		Name:           "model-a",
		InitialCapital: d("10000"),
		Cash:           d(cash),
		RealizedPnL:    d("0"),
		TotalFees:      d("0"),
		Positions:      positions,
	}
}

func TestValueCashOnly(t *testing.T) {
	t.Parallel()
	v := Value(testSnapshot("10000"), domain.PriceView{}, time.Now())

	assert.True(t, v.TotalValue.Equal(d("10000")))
	assert.True(t, v.PositionsValue.IsZero())
	assert.True(t, v.ReturnPct.IsZero())
	assert.False(t, v.Stale)
}

func TestValueMarksPositionsToMarket(t *testing.T) {
	t.Parallel()
	snap := testSnapshot("4950", domain.Position{
		Symbol:        "BTC",
		Side:          domain.SideLong,
		Quantity:      d("1"),
		AvgEntryPrice: d("50000"),
		Leverage:      d("10"),
	})
	prices := livePrices(map[string]string{"BTC": "55000"})

	v := Value(snap, prices, time.Now())

	// margin 5000 + unrealized 5000
	assert.True(t, v.MarginUsed.Equal(d("5000")))
	assert.True(t, v.UnrealizedPnL.Equal(d("5000")))
	assert.True(t, v.PositionsValue.Equal(d("10000")))
	assert.True(t, v.TotalValue.Equal(d("14950")))
	assert.True(t, v.GrossNotional.Equal(d("55000")))
	assert.True(t, v.ReturnPct.Equal(d("49.5")), "return: %s", v.ReturnPct)
	// invariant: total == cash + positions value
	assert.True(t, v.TotalValue.Equal(v.Cash.Add(v.PositionsValue)))
}

func TestValueShortUnrealized(t *testing.T) {
	t.Parallel()
	snap := testSnapshot("9000", domain.Position{
		Symbol:        "ETH",
		Side:          domain.SideShort,
		Quantity:      d("2"),
		AvgEntryPrice: d("3000"),
		Leverage:      d("6"),
	})

	v := Value(snap, livePrices(map[string]string{"ETH": "3300"}), time.Now())

	// short loses when price rises: (3000-3300)*2 = -600
	assert.True(t, v.UnrealizedPnL.Equal(d("-600")), "unrealized: %s", v.UnrealizedPnL)
	assert.True(t, v.PositionsValue.Equal(d("400")))
	assert.True(t, v.TotalValue.Equal(d("9400")))
}

func TestValueStaleQuoteDegrades(t *testing.T) {
	t.Parallel()
	snap := testSnapshot("4950", domain.Position{
		Symbol:        "BTC",
		Side:          domain.SideLong,
		Quantity:      d("1"),
		AvgEntryPrice: d("50000"),
		Leverage:      d("10"),
	})
	prices := domain.PriceView{
		"BTC": {Symbol: "BTC", Price: d("52000"), Stale: true},
	}

	v := Value(snap, prices, time.Now())

	// valuation still uses the stale mark, but flags itself
	assert.True(t, v.Stale)
	assert.True(t, v.UnrealizedPnL.Equal(d("2000")))
}

func TestValueMissingQuoteCarriesEntry(t *testing.T) {
	t.Parallel()
	snap := testSnapshot("4950", domain.Position{
		Symbol:        "BTC",
		Side:          domain.SideLong,
		Quantity:      d("1"),
		AvgEntryPrice: d("50000"),
		Leverage:      d("10"),
	})

	v := Value(snap, domain.PriceView{}, time.Now())

	assert.True(t, v.Stale)
	assert.True(t, v.UnrealizedPnL.IsZero())
	assert.True(t, v.PositionsValue.Equal(d("5000")))
	assert.True(t, v.TotalValue.Equal(d("9950")))
}

func TestValueNetBreakdown(t *testing.T) {
	t.Parallel()
	snap := testSnapshot("1000",
		domain.Position{Symbol: "BTC", Side: domain.SideLong, Quantity: d("2"), AvgEntryPrice: d("50000"), Leverage: d("10")},
		domain.Position{Symbol: "BTC", Side: domain.SideShort, Quantity: d("0.5"), AvgEntryPrice: d("51000"), Leverage: d("4")},
	)

	v := Value(snap, livePrices(map[string]string{"BTC": "50500"}), time.Now())

	require.Len(t, v.Net, 1)
	assert.True(t, v.Net[0].Long.Equal(d("2")))
	assert.True(t, v.Net[0].Short.Equal(d("0.5")))
}
