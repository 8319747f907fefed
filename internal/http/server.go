package http

import (
	"net/http"

	"github.com/Marcos5333/BotHltv/internal/history"
	"github.com/Marcos5333/BotHltv/internal/match"
)

func NewServer(subs SubscriptionLister, journal history.Store, matches MatchLister, formatter match.Formatter, ticker Ticker, metricsHandler http.Handler) *Server {
	server := &Server{
		Subscriptions:  subs,
		History:        journal,
		Matches:        matches,
		Formatter:      formatter,
		Ticker:         ticker,
		MetricsHandler: metricsHandler,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/subscriptions", Chain(s.ListSubscriptionsHandler(), paramsMiddleware))
	s.Router.Handle("/tick", Chain(s.TickHandler(), paramsMiddleware, allowMethods(http.MethodGet, http.MethodPost)))
	s.Router.Handle("/history", Chain(s.HistoryHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
