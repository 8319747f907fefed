package match

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxTeamRunes     = 18
	compactTeamRunes = 16
)

var bucketTitles = map[Bucket]struct{ emoji, title string }{
	BucketLive:      {"🔴", "AO VIVO"},
	BucketScheduled: {"🟡", "AGENDADAS"},
	BucketFinished:  {"⚪", "ENCERRADAS"},
}

// CompactTeam shortens long team names to 16 runes plus an ellipsis.
func CompactTeam(name string) string {
	r := []rune(name)
	if len(r) > maxTeamRunes {
		return string(r[:compactTeamRunes]) + "…"
	}
	return name
}

// Formatter renders match listings and live updates. Kick-off times are shown in Location.
type Formatter struct {
	Location *time.Location
}

func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{Location: loc}
}

// Render produces the numbered listing for one bucket. The numbering is 1-based
// and matches the order of matches, so a user reply "n" selects matches[n-1].
func (f Formatter) Render(matches []Match, bucket Bucket) string {
	head, ok := bucketTitles[bucket]
	if !ok {
		head = bucketTitles[BucketFinished]
	}
	if len(matches) == 0 {
		return fmt.Sprintf("%s *%s*: nenhuma partida.", head.emoji, head.title)
	}

	items := make([]string, 0, len(matches))
	for i, m := range matches {
		items = append(items, f.item(i+1, m))
	}
	return fmt.Sprintf("%s *%s* (%d)\n\n%s", head.emoji, head.title, len(matches), strings.Join(items, "\n\n"))
}

func (f Formatter) item(n int, m Match) string {
	bo := ""
	if m.NumberOfMaps > 0 {
		bo = fmt.Sprintf(" • BO%d", m.NumberOfMaps)
	}
	return fmt.Sprintf("%d. %s [%d] x [%d] %s\n   🏟️ %s • 🕒 %s%s",
		n,
		CompactTeam(m.HomeName()), m.HomeScore, m.AwayScore, CompactTeam(m.AwayName()),
		m.Event(), f.clock(m.BeginAt), bo)
}

func (f Formatter) clock(t *time.Time) string {
	if t == nil || t.IsZero() {
		return placeholderTime
	}
	return t.In(f.Location).Format("15:04")
}

// Update renders the push notification for a live match.
func (f Formatter) Update(m Match, round *GameRound) string {
	return fmt.Sprintf("⚡ *Atualização AO VIVO!*\n\n🔴 %s [%d] x [%d] %s\n%s\n🏟️ %s",
		m.HomeName(), m.HomeScore, m.AwayScore, m.AwayName(), round.Summary(), m.Event())
}
