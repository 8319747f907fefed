package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/Marcos5333/BotHltv/internal/msgcat"
	"github.com/Marcos5333/BotHltv/internal/notifier"
	"github.com/Marcos5333/BotHltv/internal/pandascore"
	"github.com/Marcos5333/BotHltv/internal/subscription"
	"github.com/Marcos5333/BotHltv/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = "5511999@c.us"

type fixture struct {
	machine  *Machine
	provider *pandascore.MockClient
	registry *subscription.Registry
	states   *StateStore
	sender   *notifier.Mock
	metrics  *metrics.Mock
}

func newFixture(t *testing.T, matches ...match.Match) *fixture {
	t.Helper()
	f := &fixture{
		provider: pandascore.NewMockClient(),
		registry: subscription.New(),
		states:   NewStateStore(),
		sender:   notifier.NewMock(),
		metrics:  metrics.NewMock(),
	}
	f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) {
		return matches, nil
	}
	f.machine = New(f.provider, f.registry, f.states, f.sender, msgcat.MustDefault(), match.NewFormatter(time.UTC), f.metrics)
	return f
}

func (f *fixture) say(text string) Action {
	return f.machine.Handle(context.Background(), transport.Inbound{Sender: user, Text: text})
}

func (f *fixture) lastReply(t *testing.T) string {
	t.Helper()
	replies := f.sender.SentTo(user)
	require.NotEmpty(t, replies)
	return replies[len(replies)-1]
}

func liveMatch(id, home, away string, s1, s2 int) match.Match {
	return match.Match{ID: id, Status: match.StatusRunning, Home: match.Team{Name: home}, Away: match.Team{Name: away}, HomeScore: s1, AwayScore: s2, Tournament: "Major"}
}

func TestSubscribeScenario(t *testing.T) {
	f := newFixture(t, liveMatch("m1", "TeamA", "TeamB", 10, 8))

	assert.Equal(t, ActionMenu, f.say("jogos"))
	assert.Contains(t, f.lastReply(t), "Menu CS2")
	assert.IsType(t, MenuOpen{}, f.states.Get(user))

	assert.Equal(t, ActionLive, f.say("1"))
	replies := f.sender.SentTo(user)
	require.Len(t, replies, 3)
	assert.Equal(t, "🔍 Buscando partidas *AO VIVO*...", replies[1])
	assert.Contains(t, replies[2], "TeamA [10] x [8] TeamB")
	assert.Contains(t, replies[2], "📲 Envie o número da partida para receber alertas.")

	st, ok := f.states.Get(user).(SelectingMatch)
	require.True(t, ok)
	require.Len(t, st.Candidates, 1)
	assert.Equal(t, "m1", st.Candidates[0].ID)

	assert.Equal(t, ActionSubscribe, f.say("1"))
	id, ok := f.registry.Get(user)
	require.True(t, ok)
	assert.Equal(t, "m1", id)
	assert.Contains(t, f.lastReply(t), "TeamA vs TeamB")
	assert.IsType(t, Idle{}, f.states.Get(user))
	assert.Equal(t, 1, f.metrics.MessagesHandled("subscribe"))
}

func TestMenuKeywordsFromAnyState(t *testing.T) {
	for _, word := range []string{"menu", "  JOGOS ", "Cs2"} {
		t.Run(word, func(t *testing.T) {
			f := newFixture(t, liveMatch("m1", "A", "B", 0, 0))
			f.states.Set(user, SelectingMatch{Candidates: []match.Match{liveMatch("m1", "A", "B", 0, 0)}})
			assert.Equal(t, ActionMenu, f.say(word))
			assert.IsType(t, MenuOpen{}, f.states.Get(user))
		})
	}
}

func TestCancel(t *testing.T) {
	t.Run("nothing to cancel", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, ActionCancel, f.say("parar"))
		assert.Equal(t, "ℹ️ Você não está inscrito em nenhuma partida.", f.lastReply(t))
		assert.Equal(t, 0, f.registry.Len())
	})

	t.Run("clears subscription and keeps state", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.registry.Subscribe(user, "m1"))
		f.states.Set(user, MenuOpen{})

		assert.Equal(t, ActionCancel, f.say("🔕"))
		assert.Equal(t, "🔕 Notificações automáticas desativadas.", f.lastReply(t))
		_, ok := f.registry.Get(user)
		assert.False(t, ok)
		assert.IsType(t, MenuOpen{}, f.states.Get(user))
	})

	t.Run("cancelar works while selecting", func(t *testing.T) {
		f := newFixture(t)
		sel := SelectingMatch{Candidates: []match.Match{liveMatch("m1", "A", "B", 0, 0)}}
		f.states.Set(user, sel)
		f.say("cancelar")
		assert.Equal(t, sel, f.states.Get(user))
	})
}

func TestMenuOptions(t *testing.T) {
	begin := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	all := []match.Match{
		liveMatch("m1", "TeamA", "TeamB", 1, 0),
		{ID: "m2", Status: match.StatusNotStarted, Home: match.Team{Name: "C"}, Away: match.Team{Name: "D"}, BeginAt: &begin},
		{ID: "m3", Status: match.StatusFinished, Home: match.Team{Name: "E"}, Away: match.Team{Name: "F"}, HomeScore: 2, AwayScore: 1},
	}

	t.Run("scheduled", func(t *testing.T) {
		f := newFixture(t, all...)
		f.states.Set(user, MenuOpen{})
		assert.Equal(t, ActionScheduled, f.say("2"))
		assert.Contains(t, f.lastReply(t), "🟡 *AGENDADAS* (1)")
		assert.Contains(t, f.lastReply(t), "C [0] x [0] D")
		assert.IsType(t, Idle{}, f.states.Get(user))
	})

	t.Run("finished", func(t *testing.T) {
		f := newFixture(t, all...)
		f.states.Set(user, MenuOpen{})
		assert.Equal(t, ActionFinished, f.say("3"))
		assert.Contains(t, f.lastReply(t), "E [2] x [1] F")
		assert.IsType(t, Idle{}, f.states.Get(user))
	})

	t.Run("exit", func(t *testing.T) {
		f := newFixture(t, all...)
		f.states.Set(user, MenuOpen{})
		assert.Equal(t, ActionExit, f.say("sair"))
		assert.Contains(t, f.lastReply(t), "Saindo")
		assert.IsType(t, Idle{}, f.states.Get(user))
		assert.Equal(t, 0, f.provider.Calls())
	})

	t.Run("invalid option keeps menu open", func(t *testing.T) {
		f := newFixture(t, all...)
		f.states.Set(user, MenuOpen{})
		assert.Equal(t, ActionInvalidOption, f.say("9"))
		assert.Equal(t, "❌ Opção inválida.", f.lastReply(t))
		assert.IsType(t, MenuOpen{}, f.states.Get(user))
	})

	t.Run("no live matches resets", func(t *testing.T) {
		f := newFixture(t, all[1:]...)
		f.states.Set(user, MenuOpen{})
		assert.Equal(t, ActionNoLive, f.say("1"))
		assert.Equal(t, "⚪ Nenhuma partida ao vivo no momento.", f.lastReply(t))
		assert.IsType(t, Idle{}, f.states.Get(user))
	})

	t.Run("provider failure looks like no matches", func(t *testing.T) {
		f := newFixture(t)
		f.provider.ListMatchesFunc = func(ctx context.Context) ([]match.Match, error) {
			return nil, errors.New("timeout")
		}
		f.states.Set(user, MenuOpen{})
		assert.Equal(t, ActionNoLive, f.say("1"))
		assert.NotContains(t, f.lastReply(t), "timeout")
	})

	t.Run("empty bucket", func(t *testing.T) {
		f := newFixture(t)
		f.states.Set(user, MenuOpen{})
		f.say("3")
		assert.Equal(t, "⚪ *ENCERRADAS*: nenhuma partida.", f.lastReply(t))
	})
}

func TestSelectMatch(t *testing.T) {
	candidates := []match.Match{
		liveMatch("m1", "A", "B", 0, 0),
		liveMatch("m2", "C", "D", 0, 0),
		liveMatch("m3", "E", "F", 0, 0),
	}

	for _, input := range []string{"5", "0", "-1", "abc", "1abc", ""} {
		t.Run("rejects "+input, func(t *testing.T) {
			f := newFixture(t)
			f.states.Set(user, SelectingMatch{Candidates: candidates})
			assert.Equal(t, ActionInvalidNumber, f.say(input))
			assert.Equal(t, "❌ Número inválido. Envie um número da lista.", f.lastReply(t))
			assert.Equal(t, SelectingMatch{Candidates: candidates}, f.states.Get(user))
			assert.Equal(t, 0, f.registry.Len())
		})
	}

	t.Run("replaces existing subscription", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.registry.Subscribe(user, "m1"))
		f.states.Set(user, SelectingMatch{Candidates: candidates})
		assert.Equal(t, ActionSubscribe, f.say("3"))
		id, _ := f.registry.Get(user)
		assert.Equal(t, "m3", id)
		assert.Equal(t, 1, f.registry.Len())
	})

	t.Run("uses the list that was shown", func(t *testing.T) {
		f := newFixture(t, liveMatch("other", "X", "Y", 0, 0))
		f.states.Set(user, SelectingMatch{Candidates: candidates})
		f.say("2")
		id, _ := f.registry.Get(user)
		assert.Equal(t, "m2", id)
		assert.Equal(t, 0, f.provider.Calls())
	})
}

func TestIdleHint(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, ActionHint, f.say("oi"))
	assert.Equal(t, "🤖 Bot CS2 ativo! Envie *jogos* para abrir o menu.", f.lastReply(t))
	assert.Equal(t, 0, f.states.Len())
}

func TestSendFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(t, liveMatch("m1", "A", "B", 0, 0))
	f.sender.SendTextFunc = func(ctx context.Context, recipient, text string) error {
		return errors.New("offline")
	}
	f.say("menu")
	assert.IsType(t, MenuOpen{}, f.states.Get(user))
}

type failingSubs struct{}

func (failingSubs) Subscribe(recipient, matchID string) error { return errors.New("registry unavailable") }
func (failingSubs) Unsubscribe(recipient string) bool { return false }

func TestSubscribeFailureReplies(t *testing.T) {
	f := newFixture(t, liveMatch("m1", "TeamA", "TeamB", 1, 0))
	f.machine.subs = failingSubs{}

	f.say("jogos")
	f.say("1")
	before := len(f.sender.SentTo(user))

	assert.Equal(t, ActionSubscribeFail, f.say("1"))
	require.Len(t, f.sender.SentTo(user), before+1, "the recipient always gets an answer")
	assert.Contains(t, f.lastReply(t), "Não foi possível ativar os alertas")
	assert.IsType(t, SelectingMatch{}, f.states.Get(user), "the recipient can pick again")
	assert.Equal(t, 1, f.metrics.MessagesHandled(string(ActionSubscribeFail)))
}
