package server

import (
	"github.com/gorilla/mux"
)

func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/health", h.HandleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", h.HandleStats).Methods("GET")
	api.HandleFunc("/days", h.HandleDays).Methods("GET")
	api.HandleFunc("/days/{date}", h.HandleDay).Methods("GET")
	api.HandleFunc("/days/{date}/rows/{index:[0-9]+}/screenshot", h.HandleScreenshot).Methods("GET", "HEAD")
	api.HandleFunc("/trades", h.HandleTrades).Methods("GET")
	api.HandleFunc("/diagnostics", h.HandleDiagnostics).Methods("GET")
	api.HandleFunc("/calendar", h.HandleCalendar).Methods("GET")
	api.HandleFunc("/partitions", h.HandlePartitions).Methods("GET")

	return r
}
