package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineSumsAccounts(t *testing.T) {
	t.Parallel()
	now := time.Now()
	valuations := []Valuation{
		{InitialCapital: d("10000"), Cash: d("4950"), PositionsValue: d("10000"), TotalValue: d("14950"), RealizedPnL: d("0"), TotalFees: d("50")},
		{InitialCapital: d("10000"), Cash: d("9000"), PositionsValue: d("400"), TotalValue: d("9400"), RealizedPnL: d("-500"), TotalFees: d("30")},
	}

	c := Combine(valuations, now)

	assert.Equal(t, 2, c.Accounts)
	assert.True(t, c.TotalValue.Equal(d("24350")))
	assert.True(t, c.InitialCapital.Equal(d("20000")))
	assert.True(t, c.TotalFees.Equal(d("80")))
	// (24350-20000)/20000 * 100 = 21.75
	assert.True(t, c.ReturnPct.Equal(d("21.75")), "return: %s", c.ReturnPct)
	assert.False(t, c.Stale)
}

func TestCombineStalePropagates(t *testing.T) {
	t.Parallel()
	c := Combine([]Valuation{
		{InitialCapital: d("10000"), TotalValue: d("10000")},
		{InitialCapital: d("10000"), TotalValue: d("10000"), Stale: true},
	}, time.Now())
	assert.True(t, c.Stale)
}

func TestCombineEmpty(t *testing.T) {
	t.Parallel()
	c := Combine(nil, time.Now())
	assert.Equal(t, 0, c.Accounts)
	assert.True(t, c.TotalValue.IsZero())
	assert.True(t, c.ReturnPct.IsZero())
}

func TestLeaderboardOrdersByReturn(t *testing.T) {
	t.Parallel()
	valuations := []Valuation{
		{Name: "alpha", ReturnPct: d("-3")},
		{Name: "bravo", ReturnPct: d("12.5")},
		{Name: "delta", ReturnPct: d("12.5")},
		{Name: "charlie", ReturnPct: d("0")},
	}

	board := Leaderboard(valuations)

	require.Len(t, board, 4)
	assert.Equal(t, "bravo", board[0].Name)
	assert.Equal(t, "delta", board[1].Name) // tie breaks on name
	assert.Equal(t, "charlie", board[2].Name)
	assert.Equal(t, "alpha", board[3].Name)
	// input untouched
	assert.Equal(t, "alpha", valuations[0].Name)
}

func TestCombinedChartLabelsSeries(t *testing.T) {
	t.Parallel()
	h := NewHistoryRecorder(nil)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	a := LedgerSnapshot{AccountID: uuid.New(), Name: "bravo"}
	b := LedgerSnapshot{AccountID: uuid.New(), Name: "alpha"}
	require.NoError(t, h.Record(ctx, equityPoint(a.AccountID, base, "10000", "0")))
	require.NoError(t, h.Record(ctx, equityPoint(a.AccountID, base.Add(time.Hour), "11000", "0")))
	require.NoError(t, h.Record(ctx, equityPoint(b.AccountID, base, "9000", "0")))

	chart := CombinedChart(h, []LedgerSnapshot{a, b}, time.Time{}, time.Time{})

	require.Len(t, chart, 2)
	assert.Equal(t, "alpha", chart[0].Name)
	assert.Len(t, chart[0].Points, 1)
	assert.Equal(t, "bravo", chart[1].Name)
	assert.Len(t, chart[1].Points, 2)
}

func TestMergedEquityCurveForwardFills(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	series := []ChartSeries{
		{
			Name: "a",
			Points: []ChartPoint{
				{Timestamp: base, TotalValue: d("10000")},
				{Timestamp: base.Add(2 * time.Hour), TotalValue: d("12000")},
			},
		},
		{
			Name: "b",
			Points: []ChartPoint{
				{Timestamp: base.Add(time.Hour), TotalValue: d("9000")},
			},
		},
	}

	merged := MergedEquityCurve(series)

	require.Len(t, merged, 3)
	// t0: a=10000, b back-filled from its first point 9000
	assert.True(t, merged[0].TotalValue.Equal(d("19000")), "t0: %s", merged[0].TotalValue)
	// t1: a carried forward 10000, b=9000
	assert.True(t, merged[1].TotalValue.Equal(d("19000")), "t1: %s", merged[1].TotalValue)
	// t2: a=12000, b carried forward 9000
	assert.True(t, merged[2].TotalValue.Equal(d("21000")), "t2: %s", merged[2].TotalValue)
	assert.True(t, merged[0].Timestamp.Before(merged[1].Timestamp))
}

func TestMergedEquityCurveEmpty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, MergedEquityCurve(nil))
	assert.Nil(t, MergedEquityCurve([]ChartSeries{{Name: "a"}}))
}
