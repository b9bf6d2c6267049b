package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"stocklog/internal/eod"
	"stocklog/internal/types"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func validFormat(f string) bool {
	return f == formatTable || f == formatJSON || f == formatCSV
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDays(w io.Writer, format string, days []types.DayStat) error {
	switch format {
	case formatJSON:
		return writeJSON(w, days)
	case formatCSV:
		return eod.WriteDaysCSV(w, days)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tTRADES\tOPEN_LONG\tOPEN_SHORT\tCLOSE_LONG\tCLOSE_SHORT\tDAY_P&L\tMAX_DD\tMAX_DU\t")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t\n",
			d.Date, d.TradeCount, d.OpenLongCount, d.OpenShortCount, d.CloseLongCount, d.CloseShortCount,
			optional(d.DayProfitLoss), optional(d.DayMaxDrawdown), optional(d.DayMaxDrawup))
	}
	return tw.Flush()
}

func printTrades(w io.Writer, format string, trades []types.Trade) error {
	switch format {
	case formatJSON:
		return writeJSON(w, trades)
	case formatCSV:
		return eod.WriteTradesCSV(w, trades)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tENTRY\tEXIT\tTYPE\tENTRY_PRICE\tEXIT_PRICE\tP&L\tMAX_DD\tMAX_DU\t")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.Date, t.EntryTime.Format(types.ClockLayout), t.ExitTime.Format(types.ClockLayout), t.Type,
			eod.FormatPrice(t.EntryPrice), eod.FormatPrice(t.ExitPrice),
			eod.FormatMoney(t.ProfitLoss), eod.FormatMoney(t.MaxDrawdown), eod.FormatMoney(t.MaxDrawup))
	}
	return tw.Flush()
}

func printDayData(w io.Writer, format string, dd types.DayData) error {
	switch format {
	case formatJSON:
		return writeJSON(w, dd)
	case formatCSV:
		return eod.WriteRowsCSV(w, dd.Rows)
	}
	if !dd.Found {
		_, err := fmt.Fprintf(w, "No data available for the date - %s\n", dd.Date)
		return err
	}
	fmt.Fprintf(w, "Data for %s (partition %s)\n", dd.Date, dd.Partition)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tSTOCK PRICE\tAI RECOMMENDATION")
	for i, r := range dd.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, r.Clock(), eod.FormatPrice(r.Price), r.Recommendation)
	}
	return tw.Flush()
}

// printRowDetail shows one row the way the dashboard side panel does.
// screenshot is the resolved image location, or "" when none was found.
func printRowDetail(w io.Writer, format string, dd types.DayData, index int, screenshot string) error {
	r := dd.Rows[index]
	if format == formatJSON {
		return writeJSON(w, struct {
			types.LogRow
			Index      int    `json:"index"`
			Screenshot string `json:"screenshot,omitempty"`
		}{r, index, screenshot})
	}
	if format == formatCSV {
		return eod.WriteRowsCSV(w, []types.LogRow{r})
	}
	fmt.Fprintf(w, "%s %s  price %s\n", dd.Date, r.Clock(), eod.FormatPrice(r.Price))
	if screenshot != "" {
		fmt.Fprintf(w, "Screenshot: %s\n", screenshot)
	} else {
		fmt.Fprintln(w, "Screenshot: not found")
	}
	fmt.Fprintf(w, "Reason:\n%s\n", r.Reason)
	fmt.Fprintf(w, "Note:\n%s\n", r.Note)
	_, err := fmt.Fprintf(w, "AI Recommendation: %s, Confidence: %v\n", r.Recommendation, r.Confidence)
	return err
}

func printPartitions(w io.Writer, format string, parts []types.Partition) error {
	if format == formatJSON {
		return writeJSON(w, parts)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTITION\tDIR")
	for _, p := range parts {
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Dir)
	}
	return tw.Flush()
}

func printDiagnostics(w io.Writer, format string, diags []types.Diagnostic) error {
	if format == formatJSON {
		if diags == nil {
			diags = []types.Diagnostic{}
		}
		return writeJSON(w, diags)
	}
	if len(diags) == 0 {
		_, err := fmt.Fprintln(w, "All partitions readable")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTITION\tREASON")
	for _, d := range diags {
		fmt.Fprintf(tw, "%s\t%s\n", d.Partition, d.Reason)
	}
	return tw.Flush()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return eod.FormatMoney(*v)
}
