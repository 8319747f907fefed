package processor

import (
	"sync"
	"time"

	"github.com/Marcos5333/BotHltv/internal/history"
	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/Marcos5333/BotHltv/internal/msgcat"
	"github.com/Marcos5333/BotHltv/internal/notifier"
	"github.com/Marcos5333/BotHltv/internal/pandascore"
	"github.com/Marcos5333/BotHltv/internal/pubsub"
)

// Config tunes the notification loop.
type Config struct {
	Interval time.Duration
	// StaleTicks is the number of consecutive ticks a followed match may be
	// absent from the live list before the subscription is dropped. Zero disables eviction.
	StaleTicks int
	Formatter  match.Formatter
	Messages   *msgcat.Catalog
}

// Processor pushes live score changes to subscribed recipients.
type Processor struct {
	provider pandascore.Provider
	registry Registry
	notifier notifier.Notifier
	journal  history.Store
	pubsub   pubsub.Publisher
	metrics  metrics.Metrics
	cfg      Config

	tickMu sync.Mutex
	// seen holds the last listing entry of each followed match, for the
	// eviction notice once the match drops out of the listings. Guarded by tickMu.
	seen   map[string]match.Match
	now    func() time.Time
}
