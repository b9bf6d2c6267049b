package eod

import (
	"time"

	"stocklog/internal/types"
)

func ptr(v float64) *float64 { return &v }

// ValidDate reports whether d is a YYYY-MM-DD calendar date.
func ValidDate(d string) bool {
	_, err := time.Parse(types.DateLayout, d)
	return err == nil
}

func rowsOn(rows []types.LogRow, date string) []types.LogRow {
	var out []types.LogRow
	for _, r := range rows {
		if r.Date() == date {
			out = append(out, r)
		}
	}
	return out
}
