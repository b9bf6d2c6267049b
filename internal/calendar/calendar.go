// Package calendar turns the derived tables into events for a
// FullCalendar-style widget: one timed event per trade and one all-day
// event per date.
package calendar

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stocklog/internal/types"
)

const (
	ColorLoss   = "red"
	ColorProfit = "green"
	ColorFlat   = "grey"

	SlotMinTime = "08:00:00"
	SlotMaxTime = "18:00:00"
)

type Event struct {
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end,omitempty"`
	ResourceID      string `json:"resourceId,omitempty"`
	BackgroundColor string `json:"backgroundColor"`
	AllDay          bool   `json:"allDay,omitempty"`
}

type Resource struct {
	ID        string `json:"id"`
	StockName string `json:"stock_name"`
}

type Options struct {
	ResourceID   string
	ResourceName string
	InitialView  string
}

type Calendar struct {
	InitialDate string     `json:"initialDate,omitempty"`
	InitialView string     `json:"initialView"`
	SlotMinTime string     `json:"slotMinTime"`
	SlotMaxTime string     `json:"slotMaxTime"`
	Resources   []Resource `json:"resources"`
	Events      []Event    `json:"events"`
}

// Build lays out trades first, then day totals, each in table order. The
// initial date is the most recent day.
func Build(res types.DayStatsResult, opts Options) Calendar {
	cal := Calendar{
		InitialDate: res.LastDate(),
		InitialView: opts.InitialView,
		SlotMinTime: SlotMinTime,
		SlotMaxTime: SlotMaxTime,
		Resources:   []Resource{{ID: opts.ResourceID, StockName: opts.ResourceName}},
		Events:      make([]Event, 0, len(res.Trades)+len(res.Days)),
	}
	for _, t := range res.Trades {
		cal.Events = append(cal.Events, TradeEvent(t, opts.ResourceID))
	}
	for _, d := range res.Days {
		cal.Events = append(cal.Events, DayEvent(d))
	}
	return cal
}

func TradeEvent(t types.Trade, resourceID string) Event {
	return Event{
		Title:           fmt.Sprintf("%s $%s", t.Type, money(t.ProfitLoss)),
		Start:           t.Date + "T" + t.EntryTime.Format(types.ClockLayout),
		End:             t.Date + "T" + t.ExitTime.Format(types.ClockLayout),
		ResourceID:      resourceID,
		BackgroundColor: color(t.ProfitLoss),
	}
}

// DayEvent renders days without trades in grey instead of as a zero P&L.
func DayEvent(d types.DayStat) Event {
	ev := Event{Start: d.Date, AllDay: true}
	if !d.HasTrades() {
		ev.Title = fmt.Sprintf("#%d no trades", d.TradeCount)
		ev.BackgroundColor = ColorFlat
		return ev
	}
	ev.Title = fmt.Sprintf("#%d for $%s", d.TradeCount, money(*d.DayProfitLoss))
	ev.BackgroundColor = color(*d.DayProfitLoss)
	return ev
}

func money(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }

func color(pl float64) string {
	if pl < 0 {
		return ColorLoss
	}
	return ColorProfit
}
