package processor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Marcos5333/BotHltv/internal/history"
	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/Marcos5333/BotHltv/internal/msgcat"
	"github.com/Marcos5333/BotHltv/internal/notifier"
	"github.com/Marcos5333/BotHltv/internal/pandascore"
	"github.com/Marcos5333/BotHltv/internal/pubsub"
	"github.com/Marcos5333/BotHltv/internal/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	proc     *Processor
	provider *pandascore.MockClient
	registry *subscription.Registry
	sender   *notifier.Mock
	journal  *history.Mock
	pubsub   *pubsub.MockPubSubClient
	metrics  *metrics.Mock

	matches []match.Match
	round   *match.GameRound
}

func newFixture(t *testing.T, staleTicks int) *fixture {
	t.Helper()
	f := &fixture{
		provider: pandascore.NewMockClient(),
		registry: subscription.New(),
		sender:   notifier.NewMock(),
		journal:  history.NewMock(),
		pubsub:   pubsub.NewMock(),
		metrics:  metrics.NewMock(),
	}
	f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) {
		return f.matches, nil
	}
	f.provider.LatestRoundFunc = func(ctx context.Context, matchID string) (*match.GameRound, error) {
		return f.round, nil
	}
	f.proc = New(f.provider, f.registry, f.sender, f.journal, f.pubsub, f.metrics, Config{
		Interval:   time.Minute,
		StaleTicks: staleTicks,
		Formatter:  match.NewFormatter(time.UTC),
		Messages:   msgcat.MustDefault(),
	})
	return f
}

func live(id string, s1, s2 int) match.Match {
	return match.Match{ID: id, Status: match.StatusRunning, Home: match.Team{Name: "TeamA"}, Away: match.Team{Name: "TeamB"}, HomeScore: s1, AwayScore: s2, Tournament: "Major"}
}

func TestFingerprint(t *testing.T) {
	a := live("m1", 1, 0)
	b := live("m1", 1, 1)
	assert.NotEqual(t, Fingerprint(a, nil), Fingerprint(b, nil))
	assert.Equal(t, "1-0-", Fingerprint(a, nil))
	assert.Equal(t, "1-0-🧨 Inferno: 11x8", Fingerprint(a, &match.GameRound{Map: "Inferno", Home: 11, Away: 8}))
	assert.NotEqual(t,
		Fingerprint(a, &match.GameRound{Map: "Inferno", Home: 11, Away: 8}),
		Fingerprint(a, &match.GameRound{Map: "Inferno", Home: 12, Away: 8}))
}

func TestTick_NotifiesOncePerState(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	f.matches = []match.Match{live("m1", 10, 8)}
	ctx := context.Background()

	f.proc.Tick(ctx, false)
	f.proc.Tick(ctx, false)
	f.proc.Tick(ctx, false)
	require.Len(t, f.sender.SentTo("r1"), 1, "identical ticks notify once")

	f.matches = []match.Match{live("m1", 11, 8)}
	f.proc.Tick(ctx, false)
	sent := f.sender.SentTo("r1")
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "11")
	assert.Contains(t, sent[1], "8")
	assert.Contains(t, sent[1], "Atualização AO VIVO")

	assert.Equal(t, 4, f.metrics.Ticks())
	require.Len(t, f.journal.Records(), 2)
	assert.Equal(t, "11-8-", f.journal.Records()[1].Fingerprint)

	calls := f.pubsub.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, pubsub.EventScoreUpdated, calls[1].Topic)
	assert.Equal(t, 11, calls[1].Data.(pubsub.ScoreUpdate).HomeScore)
}

func TestTick_RoundChangeAloneNotifies(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	f.matches = []match.Match{live("m1", 0, 0)}
	f.round = &match.GameRound{Map: "Mirage", Home: 3, Away: 2}
	f.proc.Tick(context.Background(), false)

	f.round = &match.GameRound{Map: "Mirage", Home: 4, Away: 2}
	f.proc.Tick(context.Background(), false)

	sent := f.sender.SentTo("r1")
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "🧨 Mirage: 4x2")
}

func TestTick_RoundFailureDegrades(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	f.matches = []match.Match{live("m1", 1, 0)}
	f.provider.LatestRoundFunc = func(ctx context.Context, matchID string) (*match.GameRound, error) {
		return nil, errors.New("timeout")
	}
	f.proc.Tick(context.Background(), false)

	fp, ok := f.registry.LastFingerprint("r1")
	require.True(t, ok)
	assert.Equal(t, "1-0-", fp)
	require.Len(t, f.sender.SentTo("r1"), 1)
	assert.NotContains(t, f.sender.SentTo("r1")[0], "🧨")
}

func TestTick_ListingFailureSkipsTick(t *testing.T) {
	failures := map[string]error{
		"running endpoint down": &pandascore.EndpointError{Failed: map[string]error{
			pandascore.EndpointRunning: errors.New("timeout"),
		}},
		"unclassified error": errors.New("boom"),
	}
	for name, listErr := range failures {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 1)
			require.NoError(t, f.registry.Subscribe("r1", "m1"))
			f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) {
				return nil, listErr
			}
			f.proc.Tick(context.Background(), false)

			assert.Empty(t, f.sender.Sent())
			assert.Empty(t, f.provider.LatestRoundCalls)
			_, subscribed := f.registry.Get("r1")
			assert.True(t, subscribed, "skipped tick must not evict")
			assert.Equal(t, 1, f.metrics.TicksSkipped())
		})
	}
}

func TestTick_NonLiveEndpointFailureStillNotifies(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) {
		return []match.Match{live("m1", 1, 0)}, &pandascore.EndpointError{Failed: map[string]error{
			pandascore.EndpointPast: errors.New("502"),
		}}
	}
	f.proc.Tick(context.Background(), false)

	assert.Len(t, f.sender.SentTo("r1"), 1)
	assert.Equal(t, 0, f.metrics.TicksSkipped())
	assert.Equal(t, 1, f.metrics.NotificationsSent())
}

func TestTick_PandaScorePastOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pandascore.EndpointRunning:
			fmt.Fprint(w, `[{"id": 1, "status": "running", "videogame": {"name": "Counter-Strike"},
				"opponents": [{"opponent": {"name": "TeamA"}}, {"opponent": {"name": "TeamB"}}],
				"results": [{"score": 1}, {"score": 0}]}]`)
		case pandascore.EndpointUpcoming, "/matches/1/games":
			fmt.Fprint(w, `[]`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	f := newFixture(t, 1)
	provider := pandascore.NewClient("secret", f.metrics, pandascore.WithBaseURL(srv.URL))
	f.proc = New(provider, f.registry, f.sender, f.journal, f.pubsub, f.metrics, f.proc.cfg)
	require.NoError(t, f.registry.Subscribe("r1", "1"))

	f.proc.Tick(context.Background(), false)

	sent := f.sender.SentTo("r1")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "TeamA [1] x [0] TeamB")
	assert.Equal(t, 1, f.metrics.ProviderErrors(pandascore.EndpointPast))
}

func TestTick_NotLiveIsSkippedWithoutClearing(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	f.matches = []match.Match{{ID: "m1", Status: match.StatusFinished}}

	for i := 0; i < 5; i++ {
		f.proc.Tick(context.Background(), false)
	}
	assert.Empty(t, f.sender.Sent())
	assert.Empty(t, f.provider.LatestRoundCalls, "rounds are fetched only for live subscriptions")
	id, ok := f.registry.Get("r1")
	assert.True(t, ok)
	assert.Equal(t, "m1", id)
}

func TestTick_EvictsStaleSubscription(t *testing.T) {
	f := newFixture(t, 3)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	require.NoError(t, f.registry.Subscribe("r2", "m2"))
	f.matches = []match.Match{
		{ID: "m1", Status: match.StatusFinished, Home: match.Team{Name: "TeamA"}, Away: match.Team{Name: "TeamB"}},
		live("m2", 0, 0),
	}

	f.proc.Tick(context.Background(), false)
	f.proc.Tick(context.Background(), false)
	_, ok := f.registry.Get("r1")
	require.True(t, ok)

	f.proc.Tick(context.Background(), false)
	_, ok = f.registry.Get("r1")
	assert.False(t, ok)
	assert.Equal(t, 1, f.metrics.Evictions())

	ended := f.sender.SentTo("r1")
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0], "TeamA vs TeamB")

	_, ok = f.registry.Get("r2")
	assert.True(t, ok, "live subscriptions are kept")
	assert.Len(t, f.sender.SentTo("r2"), 1)
}

func TestTick_EvictionNoticeRemembersTeams(t *testing.T) {
	f := newFixture(t, 2)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	require.NoError(t, f.registry.Subscribe("r2", "unknown"))
	f.matches = []match.Match{live("m1", 2, 1)}
	f.proc.Tick(context.Background(), false)

	// The match vanishes from every listing.
	f.matches = nil
	f.proc.Tick(context.Background(), false)
	f.proc.Tick(context.Background(), false)

	sentR1 := f.sender.SentTo("r1")
	require.Len(t, sentR1, 2)
	assert.Contains(t, sentR1[1], "TeamA vs TeamB")
	assert.NotContains(t, sentR1[1], "Time A")

	sentR2 := f.sender.SentTo("r2")
	require.Len(t, sentR2, 1)
	assert.Contains(t, sentR2[0], "A partida que você acompanhava")
	assert.Equal(t, 2, f.metrics.Evictions())
	assert.Empty(t, f.proc.seen)
}

func TestTick_SendFailureStillRecordsFingerprint(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	f.matches = []match.Match{live("m1", 1, 0)}
	f.sender.SendTextFunc = func(ctx context.Context, recipient, text string) error {
		return errors.New("offline")
	}

	f.proc.Tick(context.Background(), false)
	f.proc.Tick(context.Background(), false)

	assert.Len(t, f.sender.SentTo("r1"), 1, "failed sends are not retried")
	records := f.journal.Records()
	require.Len(t, records, 1)
	assert.Equal(t, history.StatusFailed, records[0].Status)
	assert.Equal(t, "offline", records[0].Error)
	assert.Equal(t, 1, f.metrics.NotificationsFailed())
	assert.Equal(t, 0, f.metrics.NotificationsSent())
	assert.Empty(t, f.pubsub.Calls())
}

func TestTick_DryRunChangesNothing(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	require.NoError(t, f.registry.Subscribe("r2", "gone"))
	f.matches = []match.Match{live("m1", 1, 0)}

	f.proc.Tick(context.Background(), true)

	assert.Empty(t, f.sender.Sent())
	_, ok := f.registry.LastFingerprint("r1")
	assert.False(t, ok)
	assert.Equal(t, 2, f.registry.Len())
}

func TestTick_NoSubscriptionsSkipsProvider(t *testing.T) {
	f := newFixture(t, 0)
	f.proc.Tick(context.Background(), false)
	assert.Equal(t, 0, f.provider.Calls())
	assert.Equal(t, 1, f.metrics.Ticks())
}

func TestTryTick_RejectsOverlap(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))

	release := make(chan struct{})
	entered := make(chan struct{})
	f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) {
		close(entered)
		<-release
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		f.proc.Tick(context.Background(), false)
		close(done)
	}()
	<-entered
	assert.False(t, f.proc.TryTick(context.Background(), false))
	close(release)
	<-done

	f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) { return nil, nil }
	assert.True(t, f.proc.TryTick(context.Background(), false))
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.registry.Subscribe("r1", "m1"))
	var calls int32
	f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}
	f.proc.cfg.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.proc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
