package eod

import (
	"time"

	"stocklog/internal/types"
)

// openPosition is the single position slot used while pairing a day.
type openPosition struct {
	index int             // row index of the entry, start of the price window
	typ   types.TradeType // long or short
	price float64         // entry price
	time  time.Time       // entry timestamp
}

// DayRows holds one date's rows in replay order.
type DayRows struct {
	Date string
	Rows []types.LogRow
}

// dayTrades accumulates the per-trade metrics of one date for the rollup.
type dayTrades struct {
	profitLoss []float64
	drawdown   []float64
	drawup     []float64
}
