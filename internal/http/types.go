package http

import (
	"context"
	"net/http"

	"github.com/Marcos5333/BotHltv/internal/history"
	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/subscription"
)

// Ticker triggers a notification pass on demand.
type Ticker interface {
	TryTick(ctx context.Context, dryRun bool) bool
}

type SubscriptionLister interface {
	Snapshot() []subscription.Entry
}

type MatchLister interface {
	ListMatches(ctx context.Context) ([]match.Match, error)
}

type Server struct {
	Subscriptions  SubscriptionLister
	History        history.Store
	Matches        MatchLister
	Formatter      match.Formatter
	Ticker         Ticker
	MetricsHandler http.Handler
	Router         *http.ServeMux
}
