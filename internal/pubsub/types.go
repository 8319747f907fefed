package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventScoreUpdated        EventType = "score-updated"
	EventSubscriptionEvicted EventType = "subscription-evicted"
)

// ScoreUpdate is published each time a recipient is notified about a live match.
type ScoreUpdate struct {
	Recipient   string    `msgpack:"recipient"`
	MatchID     string    `msgpack:"match_id"`
	Home        string    `msgpack:"home"`
	Away        string    `msgpack:"away"`
	HomeScore   int       `msgpack:"home_score"`
	AwayScore   int       `msgpack:"away_score"`
	Map         string    `msgpack:"map,omitempty"`
	HomeRounds  int       `msgpack:"home_rounds"`
	AwayRounds  int       `msgpack:"away_rounds"`
	Fingerprint string    `msgpack:"fingerprint"`
	At          time.Time `msgpack:"at"`
}

// SubscriptionEvicted is published when a stale subscription is dropped.
type SubscriptionEvicted struct {
	Recipient string    `msgpack:"recipient"`
	MatchID   string    `msgpack:"match_id"`
	Misses    int       `msgpack:"misses"`
	At        time.Time `msgpack:"at"`
}
