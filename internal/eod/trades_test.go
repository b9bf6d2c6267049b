package eod

import (
	"math"
	"testing"
	"time"

	"stocklog/internal/types"
)

func at(date, clock string, price float64, rec string) types.LogRow {
	ts, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return types.LogRow{Time: ts, Price: price, Recommendation: rec}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPairTradesLongRoundTrip(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "09:45", 105, "close_long"),
	}

	trades := PairTrades(rows)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.Type != types.Long {
		t.Errorf("Expected long trade, got %s", tr.Type)
	}
	if tr.EntryPrice != 100 || tr.ExitPrice != 105 {
		t.Errorf("Expected entry 100 exit 105, got %v %v", tr.EntryPrice, tr.ExitPrice)
	}
	if tr.ProfitLoss != 5 || tr.MaxDrawdown != 0 || tr.MaxDrawup != 5 {
		t.Errorf("Expected pl=5 dd=0 du=5, got pl=%v dd=%v du=%v", tr.ProfitLoss, tr.MaxDrawdown, tr.MaxDrawup)
	}
	if tr.Date != "2024-01-15" {
		t.Errorf("Expected date 2024-01-15, got %s", tr.Date)
	}
	if !tr.EntryTime.Equal(rows[0].Time) || !tr.ExitTime.Equal(rows[1].Time) {
		t.Errorf("Expected entry/exit times from the signal rows, got %v %v", tr.EntryTime, tr.ExitTime)
	}
}

func TestPairTradesShortUsesWholeWindow(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_short"),
		at("2024-01-15", "09:40", 90, ""),
		at("2024-01-15", "09:50", 95, "close_short"),
	}

	trades := PairTrades(rows)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.Type != types.Short {
		t.Errorf("Expected short trade, got %s", tr.Type)
	}
	if tr.ProfitLoss != 5 {
		t.Errorf("Expected profit 5, got %v", tr.ProfitLoss)
	}
	if tr.MaxDrawdown != 0 {
		t.Errorf("Expected drawdown 0, got %v", tr.MaxDrawdown)
	}
	if tr.MaxDrawup != 10 {
		t.Errorf("Expected drawup 10, got %v", tr.MaxDrawup)
	}
}

func TestPairTradesClosesAtEndOfDay(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "15:55", 98, ""),
	}

	trades := PairTrades(rows)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 implicit trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ExitTime.Format(types.ClockLayout) != "15:55:00" {
		t.Errorf("Expected exit at 15:55:00, got %s", tr.ExitTime.Format(types.ClockLayout))
	}
	if tr.ExitPrice != 98 || tr.ProfitLoss != -2 {
		t.Errorf("Expected exit 98 and loss -2, got %v %v", tr.ExitPrice, tr.ProfitLoss)
	}
}

func TestPairTradesNoSignals(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "hold"),
		at("2024-01-15", "09:35", 101, "wait for confirmation"),
	}
	if trades := PairTrades(rows); len(trades) != 0 {
		t.Errorf("Expected no trades, got %d", len(trades))
	}
	if trades := PairTrades(nil); len(trades) != 0 {
		t.Errorf("Expected no trades for empty input, got %d", len(trades))
	}
}

func TestPairTradesFirstOpenWins(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "09:35", 102, "open_short"),
		at("2024-01-15", "09:40", 104, "open_long"),
		at("2024-01-15", "09:45", 103, "close_short"),
	}

	trades := PairTrades(rows)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.Type != types.Long || tr.EntryPrice != 100 {
		t.Errorf("Expected the first long open at 100 to hold, got %s at %v", tr.Type, tr.EntryPrice)
	}
	// any close label closes the position whatever its side
	if tr.ExitPrice != 103 || tr.ProfitLoss != 3 {
		t.Errorf("Expected exit 103 with profit 3, got %v %v", tr.ExitPrice, tr.ProfitLoss)
	}
	if tr.MaxDrawup != 4 {
		t.Errorf("Expected drawup 4, got %v", tr.MaxDrawup)
	}
}

func TestPairTradesOpenLabelIsNeverAClose(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "09:35", 99, "close_long then open_short"),
		at("2024-01-15", "09:40", 97, "close_long"),
	}

	trades := PairTrades(rows)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	if trades[0].ExitPrice != 97 {
		t.Errorf("Expected the mixed row to be ignored as a close, exit 97, got %v", trades[0].ExitPrice)
	}
}

func TestPairTradesCloseWithoutPositionIgnored(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "close_long"),
		at("2024-01-15", "09:35", 101, "open_short"),
		at("2024-01-15", "09:40", 99, "close_short"),
		at("2024-01-15", "09:45", 98, "close_short"),
	}

	trades := PairTrades(rows)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	if trades[0].ProfitLoss != 2 {
		t.Errorf("Expected profit 2, got %v", trades[0].ProfitLoss)
	}
}

func TestPairTradesOpenOnLastRow(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, ""),
		at("2024-01-15", "15:59", 101.5, "open_short"),
	}

	trades := PairTrades(rows)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 degenerate trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ProfitLoss != 0 || tr.MaxDrawdown != 0 || tr.MaxDrawup != 0 {
		t.Errorf("Expected all-zero metrics, got pl=%v dd=%v du=%v", tr.ProfitLoss, tr.MaxDrawdown, tr.MaxDrawup)
	}
	if !tr.EntryTime.Equal(tr.ExitTime) {
		t.Errorf("Expected entry and exit at the same row, got %v %v", tr.EntryTime, tr.ExitTime)
	}
}

func TestPairTradesSequentialTrades(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "09:40", 110, "close_long"),
		at("2024-01-15", "10:00", 108, "open_short"),
		at("2024-01-15", "10:10", 112, ""),
		at("2024-01-15", "10:20", 106, "close_short"),
	}

	trades := PairTrades(rows)
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(trades))
	}
	if trades[0].Type != types.Long || trades[1].Type != types.Short {
		t.Errorf("Expected long then short, got %s then %s", trades[0].Type, trades[1].Type)
	}
	if trades[1].MaxDrawdown != -4 || trades[1].MaxDrawup != 2 {
		t.Errorf("Expected short dd=-4 du=2, got dd=%v du=%v", trades[1].MaxDrawdown, trades[1].MaxDrawup)
	}
}

func TestPairTradesInvariants(t *testing.T) {
	prices := []float64{100, 97.5, 103.25, 99, 101, 96, 104, 100.5, 98, 102}
	labels := []string{"open_long", "", "", "close_long", "open_short", "", "", "close_short", "open_long", ""}
	var rows []types.LogRow
	for i, p := range prices {
		ts := time.Date(2024, 3, 4, 9, 30+i, 0, 0, time.UTC)
		rows = append(rows, types.LogRow{Time: ts, Price: p, Recommendation: labels[i]})
	}

	trades := PairTrades(rows)
	if len(trades) != 3 {
		t.Fatalf("Expected 3 trades, got %d", len(trades))
	}
	for i, tr := range trades {
		if tr.MaxDrawdown > tr.ProfitLoss || tr.ProfitLoss > tr.MaxDrawup {
			t.Errorf("trade %d: expected dd <= pl <= du, got %v %v %v", i, tr.MaxDrawdown, tr.ProfitLoss, tr.MaxDrawup)
		}
		if tr.MaxDrawdown > 0 || tr.MaxDrawup < 0 {
			t.Errorf("trade %d: expected dd <= 0 <= du, got %v %v", i, tr.MaxDrawdown, tr.MaxDrawup)
		}
		want := tr.ExitPrice - tr.EntryPrice
		if tr.Type == types.Short {
			want = -want
		}
		if !approx(tr.ProfitLoss, want) {
			t.Errorf("trade %d: expected profit %v, got %v", i, want, tr.ProfitLoss)
		}
		if tr.ExitTime.Before(tr.EntryTime) {
			t.Errorf("trade %d: exit before entry", i)
		}
	}

	again := PairTrades(rows)
	for i := range trades {
		if trades[i] != again[i] {
			t.Errorf("Expected identical output on replay, trade %d differs", i)
		}
	}
}

func TestPairAllKeepsDaysApart(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-16", "09:30", 50, "close_long"),
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "15:55", 104, ""),
		at("2024-01-16", "09:35", 52, "open_short"),
		at("2024-01-16", "09:40", 51, "close_short"),
	}

	trades := PairAll(GroupByDate(rows))
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(trades))
	}
	if trades[0].Date != "2024-01-15" || trades[0].ProfitLoss != 4 {
		t.Errorf("Expected the 15th to close at end of day with profit 4, got %s %v", trades[0].Date, trades[0].ProfitLoss)
	}
	if trades[1].Date != "2024-01-16" || trades[1].ProfitLoss != 1 {
		t.Errorf("Expected a short on the 16th with profit 1, got %s %v", trades[1].Date, trades[1].ProfitLoss)
	}
}
