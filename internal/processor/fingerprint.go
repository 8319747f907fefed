package processor

import (
	"fmt"

	"github.com/Marcos5333/BotHltv/internal/match"
)

// Fingerprint summarizes what a recipient has been told about a live match.
// Two observations produce the same fingerprint iff the series score and the
// round summary are both unchanged.
func Fingerprint(m match.Match, round *match.GameRound) string {
	return fmt.Sprintf("%d-%d-%s", m.HomeScore, m.AwayScore, round.Summary())
}
