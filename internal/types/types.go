package types

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Signal is one of the labels the decision model embeds in the free-text
// recommendation column.
type Signal string

const (
	OpenLong   Signal = "open_long"
	OpenShort  Signal = "open_short"
	CloseLong  Signal = "close_long"
	CloseShort Signal = "close_short"
)

// Signals lists every label in counter order.
var Signals = []Signal{OpenLong, OpenShort, CloseLong, CloseShort}

type TradeType string

const (
	Long  TradeType = "long"
	Short TradeType = "short"
)

// LogRow is one observation from a partition's metadata file.
type LogRow struct {
	Time           time.Time `json:"time"`
	Price          float64   `json:"stock_price"`
	Recommendation string    `json:"ai_recommendation"`
	Reason         string    `json:"reason"`
	Note           string    `json:"note"`
	Confidence     float64   `json:"confidence"`
	ScreenshotPath string    `json:"screenshot_path"`
}

func (r LogRow) Date() string  { return r.Time.Format(DateLayout) }
func (r LogRow) Clock() string { return r.Time.Format(ClockLayout) }

// Has reports whether the recommendation text contains s. Matching is by
// substring, so one row may carry several labels at once.
func (r LogRow) Has(s Signal) bool {
	return strings.Contains(r.Recommendation, string(s))
}

func (r LogRow) IsOpen() bool  { return r.Has(OpenLong) || r.Has(OpenShort) }
func (r LogRow) IsClose() bool { return r.Has(CloseLong) || r.Has(CloseShort) }

// IsSignal reports whether the row carries at least one label.
func (r LogRow) IsSignal() bool { return r.IsOpen() || r.IsClose() }

// Trade is a closed position derived from a day's rows.
type Trade struct {
	Date        string    `json:"date"`
	EntryTime   time.Time `json:"entry_time"`
	ExitTime    time.Time `json:"exit_time"`
	Type        TradeType `json:"trade_type"`
	EntryPrice  float64   `json:"entry_price"`
	ExitPrice   float64   `json:"exit_price"`
	ProfitLoss  float64   `json:"profit_loss"`
	MaxDrawdown float64   `json:"max_drawdown"`
	MaxDrawup   float64   `json:"max_drawup"`
}

// DayStat is the per-date rollup. The P&L fields are nil when no trade
// closed on that date, which is distinct from a net-zero day.
type DayStat struct {
	Date            string   `json:"date"`
	TradeCount      int      `json:"trade_count"`
	OpenLongCount   int      `json:"open_long_count"`
	OpenShortCount  int      `json:"open_short_count"`
	CloseLongCount  int      `json:"close_long_count"`
	CloseShortCount int      `json:"close_short_count"`
	DayProfitLoss   *float64 `json:"day_profit_loss"`
	DayMaxDrawdown  *float64 `json:"day_max_drawdown"`
	DayMaxDrawup    *float64 `json:"day_max_drawup"`
}

// HasTrades reports whether at least one trade closed on the day.
func (d DayStat) HasTrades() bool { return d.DayProfitLoss != nil }

// Partition is one dated sub-directory of the data folder.
type Partition struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

// Diagnostic records a partition that was skipped while scanning.
type Diagnostic struct {
	Partition string `json:"partition"`
	Path      string `json:"path"`
	Reason    string `json:"reason"`
}

// DayStatsResult bundles both derived tables with the partitions that
// could not be read.
type DayStatsResult struct {
	Days        []DayStat    `json:"days"`
	Trades      []Trade      `json:"trades"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// LastDate returns the most recent date in the day table, or "" when empty.
func (r DayStatsResult) LastDate() string {
	if len(r.Days) == 0 {
		return ""
	}
	return r.Days[len(r.Days)-1].Date
}

// DayData is the raw row detail for one date. Dir is the partition
// directory the rows came from and is the base for screenshot lookups.
type DayData struct {
	Date      string   `json:"date"`
	Found     bool     `json:"found"`
	Partition string   `json:"partition,omitempty"`
	Dir       string   `json:"dir,omitempty"`
	Rows      []LogRow `json:"rows"`
}
