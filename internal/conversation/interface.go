package conversation

import (
	"context"

	"github.com/Marcos5333/BotHltv/internal/match"
)

// MatchLister is the part of the match provider the conversation needs.
type MatchLister interface {
	ListMatches(ctx context.Context) ([]match.Match, error)
}

// Subscriptions is the part of the subscription registry the conversation writes.
type Subscriptions interface {
	Subscribe(recipient, matchID string) error
	Unsubscribe(recipient string) bool
}
