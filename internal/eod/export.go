package eod

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"stocklog/internal/types"
)

const (
	TradesCSV = "trades.csv"
	DaysCSV   = "days.csv"
)

type tradeCSV struct {
	Date        string `csv:"Date"`
	EntryTime   string `csv:"entry_time"`
	ExitTime    string `csv:"exit_time"`
	TradeType   string `csv:"trade_type"`
	EntryPrice  string `csv:"entry_price"`
	ExitPrice   string `csv:"exit_price"`
	ProfitLoss  string `csv:"profit_loss"`
	MaxDrawdown string `csv:"max_drawdown"`
	MaxDrawup   string `csv:"max_drawup"`
}

type dayCSV struct {
	Date            string `csv:"Date"`
	TradeCount      string `csv:"trade_count"`
	OpenLongCount   string `csv:"open_long_count"`
	OpenShortCount  string `csv:"open_short_count"`
	CloseLongCount  string `csv:"close_long_count"`
	CloseShortCount string `csv:"close_short_count"`
	DayProfitLoss   string `csv:"day_profit_loss"`
	DayMaxDrawdown  string `csv:"day_max_drawdown"`
	DayMaxDrawup    string `csv:"day_max_drawup"`
}

// rowCSV uses the same headers as the source metadata files.
type rowCSV struct {
	Time           string `csv:"Time"`
	StockPrice     string `csv:"Stock Price"`
	Recommendation string `csv:"AI Recommendation"`
	Reason         string `csv:"Reason"`
	Note           string `csv:"Note"`
	Confidence     string `csv:"Confidence"`
	ScreenshotPath string `csv:"Screenshot Path"`
}

// FormatPrice renders a price with four decimals.
func FormatPrice(v float64) string { return decimal.NewFromFloat(v).StringFixed(4) }

// FormatMoney renders a P&L style amount with two decimals.
func FormatMoney(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }

// FormatOptional renders nil as an empty cell.
func FormatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatMoney(*v)
}

func WriteTradesCSV(w io.Writer, trades []types.Trade) error {
	recs := make([]*tradeCSV, 0, len(trades))
	for _, t := range trades {
		recs = append(recs, &tradeCSV{
			Date:        t.Date,
			EntryTime:   t.EntryTime.Format(types.ClockLayout),
			ExitTime:    t.ExitTime.Format(types.ClockLayout),
			TradeType:   string(t.Type),
			EntryPrice:  FormatPrice(t.EntryPrice),
			ExitPrice:   FormatPrice(t.ExitPrice),
			ProfitLoss:  FormatMoney(t.ProfitLoss),
			MaxDrawdown: FormatMoney(t.MaxDrawdown),
			MaxDrawup:   FormatMoney(t.MaxDrawup),
		})
	}
	return gocsv.Marshal(&recs, w)
}

func WriteDaysCSV(w io.Writer, days []types.DayStat) error {
	recs := make([]*dayCSV, 0, len(days))
	for _, d := range days {
		recs = append(recs, &dayCSV{
			Date:            d.Date,
			TradeCount:      strconv.Itoa(d.TradeCount),
			OpenLongCount:   strconv.Itoa(d.OpenLongCount),
			OpenShortCount:  strconv.Itoa(d.OpenShortCount),
			CloseLongCount:  strconv.Itoa(d.CloseLongCount),
			CloseShortCount: strconv.Itoa(d.CloseShortCount),
			DayProfitLoss:   FormatOptional(d.DayProfitLoss),
			DayMaxDrawdown:  FormatOptional(d.DayMaxDrawdown),
			DayMaxDrawup:    FormatOptional(d.DayMaxDrawup),
		})
	}
	return gocsv.Marshal(&recs, w)
}

// WriteRowsCSV writes raw rows back out in the metadata.csv layout.
func WriteRowsCSV(w io.Writer, rows []types.LogRow) error {
	recs := make([]*rowCSV, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, &rowCSV{
			Time:           r.Time.Format("2006-01-02 15:04:05"),
			StockPrice:     strconv.FormatFloat(r.Price, 'f', -1, 64),
			Recommendation: r.Recommendation,
			Reason:         r.Reason,
			Note:           r.Note,
			Confidence:     strconv.FormatFloat(r.Confidence, 'f', -1, 64),
			ScreenshotPath: r.ScreenshotPath,
		})
	}
	return gocsv.Marshal(&recs, w)
}

// ExportCSV writes trades.csv and days.csv into dir and returns their
// paths.
func ExportCSV(dir string, res types.DayStatsResult) (tradesPath, daysPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	tradesPath = filepath.Join(dir, TradesCSV)
	if err := writeFile(tradesPath, func(w io.Writer) error { return WriteTradesCSV(w, res.Trades) }); err != nil {
		return "", "", err
	}
	daysPath = filepath.Join(dir, DaysCSV)
	if err := writeFile(daysPath, func(w io.Writer) error { return WriteDaysCSV(w, res.Days) }); err != nil {
		return "", "", err
	}
	return tradesPath, daysPath, nil
}

func writeFile(p string, write func(io.Writer) error) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
