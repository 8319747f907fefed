package processor

import (
	"github.com/Marcos5333/BotHltv/internal/subscription"
)

// Registry defines the subscription operations required by the processor.
type Registry interface {
	Len() int
	Snapshot() []subscription.Entry
	LastFingerprint(recipient string) (string, bool)
	Advance(recipient, matchID, fp string) bool
	MarkMissed(recipient, matchID string) int
	UnsubscribeIf(recipient, matchID string) bool
}
