package eod

import (
	"testing"

	"stocklog/internal/types"
)

func TestGroupByDateOrdersDatesKeepsRowOrder(t *testing.T) {
	rows := []types.LogRow{
		at("2024-02-01", "10:00", 3, ""),
		at("2024-01-31", "15:00", 1, ""),
		at("2024-02-01", "09:00", 4, ""),
		at("2024-01-31", "09:00", 2, ""),
	}

	days := GroupByDate(rows)
	if len(days) != 2 {
		t.Fatalf("Expected 2 dates, got %d", len(days))
	}
	if days[0].Date != "2024-01-31" || days[1].Date != "2024-02-01" {
		t.Errorf("Expected ascending dates, got %s %s", days[0].Date, days[1].Date)
	}
	// file order is kept within a date, even when the clock goes backwards
	if days[0].Rows[0].Price != 1 || days[0].Rows[1].Price != 2 {
		t.Errorf("Expected input order within a date, got %v %v", days[0].Rows[0].Price, days[0].Rows[1].Price)
	}
	if days[1].Rows[0].Price != 3 || days[1].Rows[1].Price != 4 {
		t.Errorf("Expected input order within a date, got %v %v", days[1].Rows[0].Price, days[1].Rows[1].Price)
	}
}

func TestAggregateDaysRollup(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "09:45", 105, "close_long"),
		at("2024-01-15", "10:00", 104, "open_short"),
		at("2024-01-15", "10:10", 106, ""),
		at("2024-01-15", "10:20", 101, "close_short"),
		at("2024-01-16", "09:30", 50, "hold"),
	}
	trades := PairAll(GroupByDate(rows))

	days := AggregateDays(rows, trades)
	if len(days) != 2 {
		t.Fatalf("Expected 2 day stats, got %d", len(days))
	}

	d := days[0]
	if d.Date != "2024-01-15" {
		t.Fatalf("Expected 2024-01-15 first, got %s", d.Date)
	}
	if d.TradeCount != 4 {
		t.Errorf("Expected 4 signal rows, got %d", d.TradeCount)
	}
	if d.OpenLongCount != 1 || d.OpenShortCount != 1 || d.CloseLongCount != 1 || d.CloseShortCount != 1 {
		t.Errorf("Expected one of each label, got %d %d %d %d",
			d.OpenLongCount, d.OpenShortCount, d.CloseLongCount, d.CloseShortCount)
	}
	if !d.HasTrades() {
		t.Fatal("Expected P&L on a day with trades")
	}
	if *d.DayProfitLoss != 8 {
		t.Errorf("Expected day P&L 8, got %v", *d.DayProfitLoss)
	}
	if *d.DayMaxDrawdown != -2 {
		t.Errorf("Expected day drawdown -2, got %v", *d.DayMaxDrawdown)
	}
	if *d.DayMaxDrawup != 5 {
		t.Errorf("Expected day drawup 5, got %v", *d.DayMaxDrawup)
	}

	quiet := days[1]
	if quiet.TradeCount != 0 || quiet.OpenLongCount != 0 || quiet.CloseShortCount != 0 {
		t.Errorf("Expected zero counts on a day without signals, got %+v", quiet)
	}
	if quiet.DayProfitLoss != nil || quiet.DayMaxDrawdown != nil || quiet.DayMaxDrawup != nil {
		t.Error("Expected nil P&L fields on a day without trades")
	}
}

func TestAggregateDaysConservesProfit(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "open_long"),
		at("2024-01-15", "09:45", 97, "close_long"),
		at("2024-01-15", "10:00", 97, "open_long"),
		at("2024-01-15", "15:55", 99.5, ""),
		at("2024-01-17", "09:30", 20, "open_short"),
		at("2024-01-17", "09:31", 19.25, "close_long"),
	}
	trades := PairAll(GroupByDate(rows))
	days := AggregateDays(rows, trades)

	var fromTrades, fromDays float64
	for _, tr := range trades {
		fromTrades += tr.ProfitLoss
	}
	for _, d := range days {
		if d.DayProfitLoss != nil {
			fromDays += *d.DayProfitLoss
		}
	}
	if !approx(fromTrades, fromDays) {
		t.Errorf("Expected day totals %v to match trade totals %v", fromDays, fromTrades)
	}
}

func TestAggregateDaysCountsEveryLabelOnARow(t *testing.T) {
	rows := []types.LogRow{
		at("2024-01-15", "09:30", 100, "close_short and open_long"),
		at("2024-01-15", "09:31", 100, "open_long open_short"),
	}

	d := AggregateDays(rows, PairTrades(rows))[0]
	if d.TradeCount != 2 {
		t.Errorf("Expected each labelled row counted once, got %d", d.TradeCount)
	}
	if d.OpenLongCount != 2 || d.OpenShortCount != 1 || d.CloseShortCount != 1 || d.CloseLongCount != 0 {
		t.Errorf("Expected counters 2/1/0/1, got %d/%d/%d/%d",
			d.OpenLongCount, d.OpenShortCount, d.CloseLongCount, d.CloseShortCount)
	}
}

func TestAggregateDaysEmpty(t *testing.T) {
	days := AggregateDays(nil, nil)
	if days == nil || len(days) != 0 {
		t.Errorf("Expected an empty non-nil table, got %#v", days)
	}
}
