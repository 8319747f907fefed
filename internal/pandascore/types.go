package pandascore

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/charmbracelet/log"
)

const DefaultBaseURL = "https://api.pandascore.co"

// Listing endpoints, queried in this order. Only EndpointRunning carries live matches.
const (
	EndpointRunning  = "/matches/running"
	EndpointUpcoming = "/matches/upcoming"
	EndpointPast     = "/matches/past"
)

var listEndpoints = []string{EndpointRunning, EndpointUpcoming, EndpointPast}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	discipline string
	metrics    metrics.Metrics
}

type apiMatch struct {
	ID           int64         `json:"id"`
	Status       string        `json:"status"`
	BeginAt      string        `json:"begin_at"`
	NumberOfGame int           `json:"number_of_games"`
	NumberOfMaps int           `json:"number_of_maps"`
	Opponents    []apiOpponent `json:"opponents"`
	Results      []apiResult   `json:"results"`
	Tournament   *apiNamed     `json:"tournament"`
	League       *apiNamed     `json:"league"`
	Videogame    *apiNamed     `json:"videogame"`
}

type apiOpponent struct {
	Opponent *apiNamed `json:"opponent"`
}

type apiResult struct {
	Score *int `json:"score"`
}

type apiNamed struct {
	Name string `json:"name"`
}

type apiGame struct {
	Status    string            `json:"status"`
	Map       *apiNamed         `json:"map"`
	Opponents []apiGameOpponent `json:"opponents"`
}

type apiGameOpponent struct {
	Score *int `json:"score"`
}

func (a apiMatch) toMatch() match.Match {
	m := match.Match{
		ID:           strconv.FormatInt(a.ID, 10),
		Status:       match.Status(a.Status),
		BeginAt:      parseInstant(a.BeginAt),
		NumberOfMaps: a.NumberOfGame,
	}
	if m.NumberOfMaps == 0 {
		m.NumberOfMaps = a.NumberOfMaps
	}
	if len(a.Opponents) > 0 && a.Opponents[0].Opponent != nil {
		m.Home.Name = a.Opponents[0].Opponent.Name
	}
	if len(a.Opponents) > 1 && a.Opponents[1].Opponent != nil {
		m.Away.Name = a.Opponents[1].Opponent.Name
	}
	if len(a.Results) > 0 {
		m.HomeScore = scoreOf(a.Results[0].Score)
	}
	if len(a.Results) > 1 {
		m.AwayScore = scoreOf(a.Results[1].Score)
	}
	switch {
	case a.Tournament != nil && a.Tournament.Name != "":
		m.Tournament = a.Tournament.Name
	case a.League != nil:
		m.Tournament = a.League.Name
	}
	if a.Videogame != nil {
		m.Videogame = a.Videogame.Name
	}
	return m
}

// parseInstant returns nil for empty or malformed timestamps so one bad record
// does not spoil the page.
func parseInstant(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		log.Debug("Ignoring unparseable begin_at", "value", raw, "error", err)
		return nil
	}
	return &t
}

func (a apiMatch) inDiscipline(discipline string) bool {
	if a.Videogame == nil {
		return false
	}
	return strings.Contains(strings.ToLower(a.Videogame.Name), strings.ToLower(discipline))
}

// pickGame prefers a running or live game and falls back to the last one.
func pickGame(games []apiGame) *apiGame {
	if len(games) == 0 {
		return nil
	}
	for i := range games {
		if games[i].Status == "running" || games[i].Status == "live" {
			return &games[i]
		}
	}
	return &games[len(games)-1]
}

func (g apiGame) toRound() *match.GameRound {
	if len(g.Opponents) == 0 {
		return nil
	}
	r := &match.GameRound{Home: scoreOf(g.Opponents[0].Score)}
	if len(g.Opponents) > 1 {
		r.Away = scoreOf(g.Opponents[1].Score)
	}
	if g.Map != nil {
		r.Map = g.Map.Name
	}
	return r
}

func scoreOf(s *int) int {
	if s == nil {
		return 0
	}
	return *s
}
