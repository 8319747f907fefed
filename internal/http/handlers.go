package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/charmbracelet/log"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListSubscriptionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Subscriptions.Snapshot())
	}
}

// TickHandler runs one notification pass synchronously.
func (s *Server) TickHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		log.Info("Manual tick requested", "dryRun", isDryRun)
		if !s.Ticker.TryTick(r.Context(), isDryRun) {
			http.Error(w, "a tick is already running", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Tick completed.")
	}
}

func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}
		deliveries, err := s.History.Recent(r.Context(), limit)
		if err != nil {
			log.Error("Failed to read delivery history", "error", err)
			http.Error(w, "Failed to read history", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, deliveries)
	}
}

// ListMatchesHandler renders one bucket exactly as the chat menu would.
func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("bucket")
		if raw == "" {
			raw = string(match.BucketLive)
		}
		bucket, ok := match.ParseBucket(raw)
		if !ok {
			http.Error(w, "bucket must be one of live, scheduled, finished", http.StatusBadRequest)
			return
		}
		matches, err := s.Matches.ListMatches(r.Context())
		if err != nil {
			log.Warn("Match listing incomplete", "error", err)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, s.Formatter.Render(match.Classify(matches, bucket), bucket))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
