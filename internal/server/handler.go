package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"stocklog/internal/calendar"
	"stocklog/internal/eod"
	"stocklog/internal/interfaces"
	"stocklog/internal/logger"
)

// Handler serves the derived tables read-only. Every request recomputes
// from the data folder.
type Handler struct {
	summarizer interfaces.StockLogSummarizer
	calendar   calendar.Options
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func New(summarizer interfaces.StockLogSummarizer, cal calendar.Options) *Handler {
	return &Handler{summarizer: summarizer, calendar: cal}
}

func (h *Handler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleStats returns days, trades and diagnostics from one scan.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	res, err := h.summarizer.FindDayStats(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleDays(w http.ResponseWriter, r *http.Request) {
	res, err := h.summarizer.FindDayStats(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, res.Days)
}

func (h *Handler) HandleTrades(w http.ResponseWriter, r *http.Request) {
	res, err := h.summarizer.FindDayStats(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, res.Trades)
}

func (h *Handler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	res, err := h.summarizer.FindDayStats(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Diagnostics == nil {
		h.respondJSON(w, http.StatusOK, []any{})
		return
	}
	h.respondJSON(w, http.StatusOK, res.Diagnostics)
}

func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	res, err := h.summarizer.FindDayStats(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, calendar.Build(res, h.calendar))
}

func (h *Handler) HandlePartitions(w http.ResponseWriter, r *http.Request) {
	parts, err := h.summarizer.Partitions(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, parts)
}

func (h *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !eod.ValidDate(date) {
		h.respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	dd, err := h.summarizer.GetDayData(r.Context(), date)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !dd.Found {
		h.respondError(w, http.StatusNotFound, "no data available for "+date)
		return
	}
	h.respondJSON(w, http.StatusOK, dd)
}

func (h *Handler) HandleScreenshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	date := vars["date"]
	if !eod.ValidDate(date) {
		h.respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	row, err := strconv.Atoi(vars["index"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid row index")
		return
	}

	p, err := h.summarizer.Screenshot(r.Context(), date, row)
	switch {
	case errors.Is(err, eod.ErrNoDayData), errors.Is(err, eod.ErrRowOutOfRange), errors.Is(err, eod.ErrScreenshotNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.ServeFile(w, r, p)
}

// logRequests is a mux middleware that logs one line per request.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := logger.StartOperation(r.Context(), "http."+r.Method, "path", r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(timer.Context()))
		timer.End("status", rec.status)
		logger.Info(timer.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
