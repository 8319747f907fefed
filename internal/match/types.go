package match

import (
	"fmt"
	"time"
)

// Status is the provider lifecycle tag of a match.
type Status string

const (
	StatusRunning    Status = "running"
	StatusNotStarted Status = "not_started"
	StatusUpcoming   Status = "upcoming"
	StatusFinished   Status = "finished"
)

const (
	placeholderHome  = "Time A"
	placeholderAway  = "Time B"
	placeholderEvent = "Evento"
	placeholderTime  = "??:??"
	placeholderMap   = "Mapa"
)

type Team struct {
	Name string
}

// Match is one competitive fixture as returned by the provider.
type Match struct {
	ID           string
	Status       Status
	Home         Team
	Away         Team
	HomeScore    int
	AwayScore    int
	Tournament   string
	BeginAt      *time.Time
	NumberOfMaps int
	Videogame    string
}

// HomeName returns the first opponent's name or its placeholder.
func (m Match) HomeName() string {
	if m.Home.Name == "" {
		return placeholderHome
	}
	return m.Home.Name
}

// AwayName returns the second opponent's name or its placeholder.
func (m Match) AwayName() string {
	if m.Away.Name == "" {
		return placeholderAway
	}
	return m.Away.Name
}

func (m Match) Event() string {
	if m.Tournament == "" {
		return placeholderEvent
	}
	return m.Tournament
}

// GameRound is the current (or most recent) map of a live match.
type GameRound struct {
	Map  string
	Home int
	Away int
}

// Summary renders the round as "🧨 <map>: <home>x<away>". A nil round renders empty.
func (r *GameRound) Summary() string {
	if r == nil {
		return ""
	}
	name := r.Map
	if name == "" {
		name = placeholderMap
	}
	return fmt.Sprintf("🧨 %s: %dx%d", name, r.Home, r.Away)
}
