package pandascore

import (
	"context"

	"github.com/Marcos5333/BotHltv/internal/match"
)

// Provider is the read-only source of match data.
type Provider interface {
	// ListMatches returns running, upcoming and past matches of the configured
	// discipline, in that order. A non-nil error reports failed endpoints; the
	// matches from the endpoints that succeeded are still returned.
	ListMatches(ctx context.Context) ([]match.Match, error)
	// LatestRound returns the running game of a match, or its last game.
	// A nil round with a nil error means the data is not available.
	LatestRound(ctx context.Context, matchID string) (*match.GameRound, error)
}
