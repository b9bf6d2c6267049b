package eod

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"stocklog/internal/types"
)

// GroupByDate splits rows by calendar date. Dates come out ascending and
// each date keeps its rows in input order.
func GroupByDate(rows []types.LogRow) []DayRows {
	idx := map[string]int{}
	var out []DayRows
	for _, r := range rows {
		d := r.Date()
		i, ok := idx[d]
		if !ok {
			i = len(out)
			idx[d] = i
			out = append(out, DayRows{Date: d})
		}
		out[i].Rows = append(out[i].Rows, r)
	}
	slices.SortStableFunc(out, func(a, b DayRows) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

// AggregateDays produces one DayStat per date present in rows. Signal
// counters use substring matching, so a row with several labels bumps
// several counters but TradeCount only once. Dates without trades keep
// nil P&L fields.
func AggregateDays(rows []types.LogRow, trades []types.Trade) []types.DayStat {
	byDate := map[string]*dayTrades{}
	for _, t := range trades {
		dt := byDate[t.Date]
		if dt == nil {
			dt = &dayTrades{}
			byDate[t.Date] = dt
		}
		dt.profitLoss = append(dt.profitLoss, t.ProfitLoss)
		dt.drawdown = append(dt.drawdown, t.MaxDrawdown)
		dt.drawup = append(dt.drawup, t.MaxDrawup)
	}

	days := GroupByDate(rows)
	out := make([]types.DayStat, 0, len(days))
	for _, d := range days {
		st := countSignals(d)
		if dt := byDate[d.Date]; dt != nil {
			st.DayProfitLoss = ptr(floats.Sum(dt.profitLoss))
			st.DayMaxDrawdown = ptr(floats.Min(dt.drawdown))
			st.DayMaxDrawup = ptr(floats.Max(dt.drawup))
		}
		out = append(out, st)
	}
	return out
}

func countSignals(d DayRows) types.DayStat {
	st := types.DayStat{Date: d.Date}
	for _, r := range d.Rows {
		if r.IsSignal() {
			st.TradeCount++
		}
		if r.Has(types.OpenLong) {
			st.OpenLongCount++
		}
		if r.Has(types.OpenShort) {
			st.OpenShortCount++
		}
		if r.Has(types.CloseLong) {
			st.CloseLongCount++
		}
		if r.Has(types.CloseShort) {
			st.CloseShortCount++
		}
	}
	return st
}
