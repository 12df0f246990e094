package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CombinedPortfolio is the sum of every active account's valuation, the
// headline figure for the whole competition.
type CombinedPortfolio struct {
	Accounts       int             `json:"accounts"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
	Cash           decimal.Decimal `json:"cash"`
	PositionsValue decimal.Decimal `json:"positions_value"`
	TotalValue     decimal.Decimal `json:"total_value"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	TotalFees      decimal.Decimal `json:"total_fees"`
	ReturnPct      decimal.Decimal `json:"return_pct"`
	Stale          bool            `json:"stale,omitempty"`
	AsOf           time.Time       `json:"as_of"`
}

// Combine sums per-account valuations. Any stale input marks the combined
// figure stale.
func Combine(valuations []Valuation, asOf time.Time) CombinedPortfolio {
	c := CombinedPortfolio{
		Accounts:       len(valuations),
		InitialCapital: decimal.Zero,
		Cash:           decimal.Zero,
		PositionsValue: decimal.Zero,
		TotalValue:     decimal.Zero,
		RealizedPnL:    decimal.Zero,
		TotalFees:      decimal.Zero,
		AsOf:           asOf,
	}
	for _, v := range valuations {
		c.InitialCapital = c.InitialCapital.Add(v.InitialCapital)
		c.Cash = c.Cash.Add(v.Cash)
		c.PositionsValue = c.PositionsValue.Add(v.PositionsValue)
		c.TotalValue = c.TotalValue.Add(v.TotalValue)
		c.RealizedPnL = c.RealizedPnL.Add(v.RealizedPnL)
		c.TotalFees = c.TotalFees.Add(v.TotalFees)
		if v.Stale {
			c.Stale = true
		}
	}
	if c.InitialCapital.IsPositive() {
		c.ReturnPct = c.TotalValue.Sub(c.InitialCapital).
			Div(c.InitialCapital).
			Mul(decimal.NewFromInt(100))
	}
	return c
}

// Leaderboard orders valuations by return, best first. Ties break on name so
// the ordering is stable across refreshes.
func Leaderboard(valuations []Valuation) []Valuation {
	out := make([]Valuation, len(valuations))
	copy(out, valuations)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReturnPct.Equal(out[j].ReturnPct) {
			return out[i].ReturnPct.GreaterThan(out[j].ReturnPct)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ChartPoint is one (timestamp, equity) pair in a chart series.
type ChartPoint struct {
	Timestamp  time.Time       `json:"timestamp"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ChartSeries is one account's labeled equity curve for the comparison chart.
type ChartSeries struct {
	AccountID uuid.UUID    `json:"account_id"`
	Name      string       `json:"name"`
	Points    []ChartPoint `json:"points"`
}

// CombinedChart builds one labeled series per account from recorded history,
// ordered by account name.
func CombinedChart(recorder *HistoryRecorder, accounts []LedgerSnapshot, from, to time.Time) []ChartSeries {
	out := make([]ChartSeries, 0, len(accounts))
	for _, acct := range accounts {
		points := recorder.Range(acct.AccountID, from, to)
		series := ChartSeries{
			AccountID: acct.AccountID,
			Name:      acct.Name,
			Points:    make([]ChartPoint, 0, len(points)),
		}
		for _, p := range points {
			series.Points = append(series.Points, ChartPoint{Timestamp: p.Timestamp, TotalValue: p.TotalValue})
		}
		out = append(out, series)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MergedEquityCurve sums every account's history onto the union of their
// timestamps. Accounts snapshot on their own cadence, so between an
// account's points its last value is carried forward; before its first point
// the first value is carried back, since the account held roughly its
// initial capital before it started snapshotting.
func MergedEquityCurve(series []ChartSeries) []ChartPoint {
	stampSet := make(map[time.Time]struct{})
	for _, s := range series {
		for _, p := range s.Points {
			stampSet[p.Timestamp] = struct{}{}
		}
	}
	if len(stampSet) == 0 {
		return nil
	}
	stamps := make([]time.Time, 0, len(stampSet))
	for ts := range stampSet {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	merged := make([]ChartPoint, len(stamps))
	for i, ts := range stamps {
		merged[i] = ChartPoint{Timestamp: ts, TotalValue: decimal.Zero}
	}
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		idx := 0
		for i, ts := range stamps {
			for idx+1 < len(s.Points) && !s.Points[idx+1].Timestamp.After(ts) {
				idx++
			}
			value := s.Points[idx].TotalValue
			if s.Points[idx].Timestamp.After(ts) {
				// before the series starts: carry the first value back
				value = s.Points[0].TotalValue
			}
			merged[i].TotalValue = merged[i].TotalValue.Add(value)
		}
	}
	return merged
}
