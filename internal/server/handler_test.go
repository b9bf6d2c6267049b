package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"stocklog/internal/calendar"
	"stocklog/internal/eod"
	"stocklog/internal/types"
)

const header = "Time,Stock Price,AI Recommendation,Reason,Note,Confidence,Screenshot Path\n"

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "2024-01-15")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := header +
		"2024-01-15 09:30:00,100,open_long,,,0.9,D:\\bot\\shot1.png\n" +
		"2024-01-15 09:45:00,103,close_long,,,,missing.png\n"
	if err := os.WriteFile(filepath.Join(dir, "metadata.csv"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "shot1.png"), []byte("\x89PNG"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "2024-01-16"), 0o755); err != nil {
		t.Fatal(err)
	}

	s, err := eod.NewSummarizer(root)
	if err != nil {
		t.Fatal(err)
	}
	return New(s, calendar.Options{ResourceID: "nvda", ResourceName: "NVIDIA", InitialView: "dayGridMonth"})
}

func serve(t *testing.T, h *Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Expected JSON body, got %q: %v", rec.Body.String(), err)
	}
}

func TestHandleHealth(t *testing.T) {
	rec := serve(t, newTestHandler(t), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestHandleDaysAndTrades(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/api/days")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var days []types.DayStat
	decode(t, rec, &days)
	if len(days) != 1 || days[0].TradeCount != 2 || days[0].DayProfitLoss == nil || *days[0].DayProfitLoss != 3 {
		t.Errorf("Unexpected days %+v", days)
	}

	rec = serve(t, h, http.MethodGet, "/api/trades")
	var trades []types.Trade
	decode(t, rec, &trades)
	if len(trades) != 1 || trades[0].Type != types.Long || trades[0].ProfitLoss != 3 {
		t.Errorf("Unexpected trades %+v", trades)
	}
}

func TestHandleStats(t *testing.T) {
	rec := serve(t, newTestHandler(t), http.MethodGet, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var res types.DayStatsResult
	decode(t, rec, &res)
	if len(res.Days) != 1 || res.Days[0].Date != "2024-01-15" {
		t.Errorf("Unexpected days %+v", res.Days)
	}
	if len(res.Trades) != 1 || res.Trades[0].ProfitLoss != 3 {
		t.Errorf("Unexpected trades %+v", res.Trades)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Partition != "2024-01-16" {
		t.Errorf("Unexpected diagnostics %+v", res.Diagnostics)
	}
}

func TestHandleDiagnostics(t *testing.T) {
	rec := serve(t, newTestHandler(t), http.MethodGet, "/api/diagnostics")
	var diags []types.Diagnostic
	decode(t, rec, &diags)
	if len(diags) != 1 || diags[0].Partition != "2024-01-16" {
		t.Errorf("Expected the empty partition to be reported, got %+v", diags)
	}
}

func TestHandlePartitions(t *testing.T) {
	rec := serve(t, newTestHandler(t), http.MethodGet, "/api/partitions")
	var parts []types.Partition
	decode(t, rec, &parts)
	if len(parts) != 2 || parts[0].Name != "2024-01-15" {
		t.Errorf("Unexpected partitions %+v", parts)
	}
}

func TestHandleCalendar(t *testing.T) {
	rec := serve(t, newTestHandler(t), http.MethodGet, "/api/calendar")
	var cal calendar.Calendar
	decode(t, rec, &cal)
	if cal.InitialDate != "2024-01-15" || len(cal.Events) != 2 {
		t.Errorf("Unexpected calendar %+v", cal)
	}
}

func TestHandleDay(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/api/days/2024-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var dd types.DayData
	decode(t, rec, &dd)
	if !dd.Found || len(dd.Rows) != 2 || dd.Rows[0].Confidence != 0.9 {
		t.Errorf("Unexpected day data %+v", dd)
	}

	if rec := serve(t, h, http.MethodGet, "/api/days/2024-03-01"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a date without data, got %d", rec.Code)
	}

	rec = serve(t, h, http.MethodGet, "/api/days/15-01-2024")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed date, got %d", rec.Code)
	}
	var e ErrorResponse
	decode(t, rec, &e)
	if e.Error == "" {
		t.Error("Expected an error message")
	}
}

func TestHandleScreenshot(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/api/days/2024-01-15/rows/0/screenshot")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "\x89PNG" {
		t.Errorf("Expected the image bytes, got %q", rec.Body.String())
	}

	if rec := serve(t, h, http.MethodHead, "/api/days/2024-01-15/rows/0/screenshot"); rec.Code != http.StatusOK {
		t.Errorf("Expected HEAD to succeed, got %d", rec.Code)
	}

	for _, path := range []string{
		"/api/days/2024-01-15/rows/1/screenshot",
		"/api/days/2024-01-15/rows/9/screenshot",
		"/api/days/2024-02-01/rows/0/screenshot",
	} {
		if rec := serve(t, h, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(t, newTestHandler(t), http.MethodPost, "/api/days")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}
