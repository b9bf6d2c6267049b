package eod

import (
	"gonum.org/v1/gonum/floats"

	"stocklog/internal/types"
)

// PairTrades replays one date's rows in order and turns open/close signals
// into closed trades.
//
// Only one position is tracked at a time. An open signal that arrives while
// a position is already open is dropped, so the first open wins until it is
// closed. A row carrying an open label is never treated as a close, even if
// it also contains a close label. Any close label closes the open position
// regardless of its side. A position still open after the last row is
// closed at the last row's price.
func PairTrades(rows []types.LogRow) []types.Trade {
	var trades []types.Trade
	var pos *openPosition
	for i, row := range rows {
		if row.IsOpen() {
			if pos == nil {
				pos = openAt(rows, i)
			}
			continue
		}
		if row.IsClose() && pos != nil {
			trades = append(trades, pos.close(rows, i))
			pos = nil
		}
	}
	if pos != nil {
		trades = append(trades, pos.close(rows, len(rows)-1))
	}
	return trades
}

// PairAll pairs every day independently and concatenates the trades in
// day order.
func PairAll(days []DayRows) []types.Trade {
	var out []types.Trade
	for _, d := range days {
		out = append(out, PairTrades(d.Rows)...)
	}
	return out
}

func openAt(rows []types.LogRow, i int) *openPosition {
	row := rows[i]
	typ := types.Short
	if row.Has(types.OpenLong) {
		typ = types.Long
	}
	return &openPosition{index: i, typ: typ, price: row.Price, time: row.Time}
}

// close builds the trade for a position exited at rows[exit]. Both the
// entry and exit rows take part in the extremes.
func (p *openPosition) close(rows []types.LogRow, exit int) types.Trade {
	series := make([]float64, 0, exit-p.index+1)
	for _, r := range rows[p.index : exit+1] {
		series = append(series, r.Price)
	}
	lo, hi := floats.Min(series), floats.Max(series)
	out := rows[exit]

	t := types.Trade{
		Date:       rows[p.index].Date(),
		EntryTime:  p.time,
		ExitTime:   out.Time,
		Type:       p.typ,
		EntryPrice: p.price,
		ExitPrice:  out.Price,
	}
	if p.typ == types.Long {
		t.ProfitLoss = out.Price - p.price
		t.MaxDrawdown = lo - p.price
		t.MaxDrawup = hi - p.price
	} else {
		t.ProfitLoss = p.price - out.Price
		t.MaxDrawdown = p.price - hi
		t.MaxDrawup = p.price - lo
	}
	return t
}
