// Package conversation implements the chat menu: opening it, listing matches
// and picking a live match to follow.
package conversation

import (
	"context"
	"strconv"
	"strings"

	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/Marcos5333/BotHltv/internal/msgcat"
	"github.com/Marcos5333/BotHltv/internal/notifier"
	"github.com/Marcos5333/BotHltv/internal/transport"
	"github.com/charmbracelet/log"
)

// Action names the branch taken for one inbound message.
type Action string

const (
	ActionMenu          Action = "menu"
	ActionCancel        Action = "cancel"
	ActionLive          Action = "live"
	ActionNoLive        Action = "no_live"
	ActionScheduled     Action = "scheduled"
	ActionFinished      Action = "finished"
	ActionExit          Action = "exit"
	ActionInvalidOption Action = "invalid_option"
	ActionSubscribe     Action = "subscribe"
	ActionSubscribeFail Action = "subscribe_failed"
	ActionInvalidNumber Action = "invalid_number"
	ActionHint          Action = "hint"
)

var (
	menuWords   = map[string]bool{"menu": true, "jogos": true, "cs2": true}
	cancelWords = map[string]bool{"parar": true, "cancelar": true, "🔕": true}
)

type Machine struct {
	provider  MatchLister
	subs      Subscriptions
	states    *StateStore
	sender    notifier.Notifier
	messages  *msgcat.Catalog
	formatter match.Formatter
	metrics   metrics.Metrics
}

func New(provider MatchLister, subs Subscriptions, states *StateStore, sender notifier.Notifier, messages *msgcat.Catalog, formatter match.Formatter, m metrics.Metrics) *Machine {
	return &Machine{
		provider:  provider,
		subs:      subs,
		states:    states,
		sender:    sender,
		messages:  messages,
		formatter: formatter,
		metrics:   m,
	}
}

// Handle runs one conversation turn. Callers must not run two turns for the
// same recipient concurrently.
func (m *Machine) Handle(ctx context.Context, in transport.Inbound) Action {
	recipient := in.Sender
	text := strings.ToLower(strings.TrimSpace(in.Text))
	current := m.states.Get(recipient)

	action := m.step(ctx, recipient, text, current)
	m.metrics.IncMessagesHandled(string(action))
	log.Debug("Handled message", "recipient", recipient, "action", action)
	return action
}

func (m *Machine) step(ctx context.Context, recipient, text string, current State) Action {
	if menuWords[text] {
		m.states.Set(recipient, MenuOpen{})
		m.reply(ctx, recipient, m.messages.Text(msgcat.MenuOpen, nil))
		return ActionMenu
	}
	if cancelWords[text] {
		if m.subs.Unsubscribe(recipient) {
			m.reply(ctx, recipient, m.messages.Text(msgcat.CancelDone, nil))
		} else {
			m.reply(ctx, recipient, m.messages.Text(msgcat.CancelNone, nil))
		}
		return ActionCancel
	}

	switch st := current.(type) {
	case MenuOpen:
		return m.menuOption(ctx, recipient, text)
	case SelectingMatch:
		return m.selectMatch(ctx, recipient, text, st)
	case Idle:
		m.reply(ctx, recipient, m.messages.Text(msgcat.IdleHint, nil))
		return ActionHint
	default:
		log.Error("Unknown conversation state, resetting", "recipient", recipient, "state", st)
		m.states.Set(recipient, Idle{})
		m.reply(ctx, recipient, m.messages.Text(msgcat.IdleHint, nil))
		return ActionHint
	}
}

func (m *Machine) menuOption(ctx context.Context, recipient, text string) Action {
	switch text {
	case "1":
		m.reply(ctx, recipient, m.messages.Text(msgcat.LiveSearching, nil))
		live := match.Classify(m.listMatches(ctx), match.BucketLive)
		if len(live) == 0 {
			m.states.Set(recipient, Idle{})
			m.reply(ctx, recipient, m.messages.Text(msgcat.LiveNone, nil))
			return ActionNoLive
		}
		m.states.Set(recipient, SelectingMatch{Candidates: live})
		listing := m.formatter.Render(live, match.BucketLive)
		m.reply(ctx, recipient, m.messages.Text(msgcat.LivePrompt, map[string]string{"Listing": listing}))
		return ActionLive
	case "2":
		return m.listBucket(ctx, recipient, match.BucketScheduled, ActionScheduled)
	case "3":
		return m.listBucket(ctx, recipient, match.BucketFinished, ActionFinished)
	case "sair":
		m.states.Set(recipient, Idle{})
		m.reply(ctx, recipient, m.messages.Text(msgcat.MenuExit, nil))
		return ActionExit
	default:
		m.reply(ctx, recipient, m.messages.Text(msgcat.MenuInvalid, nil))
		return ActionInvalidOption
	}
}

func (m *Machine) listBucket(ctx context.Context, recipient string, b match.Bucket, action Action) Action {
	matches := match.Classify(m.listMatches(ctx), b)
	m.states.Set(recipient, Idle{})
	m.reply(ctx, recipient, m.formatter.Render(matches, b))
	return action
}

func (m *Machine) selectMatch(ctx context.Context, recipient, text string, st SelectingMatch) Action {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(st.Candidates) {
		m.reply(ctx, recipient, m.messages.Text(msgcat.SelectInvalid, nil))
		return ActionInvalidNumber
	}
	chosen := st.Candidates[n-1]
	if err := m.subs.Subscribe(recipient, chosen.ID); err != nil {
		log.Error("Failed to subscribe", "recipient", recipient, "matchID", chosen.ID, "error", err)
		m.reply(ctx, recipient, m.messages.Text(msgcat.SelectFailed, nil))
		return ActionSubscribeFail
	}
	m.states.Set(recipient, Idle{})
	log.Info("Recipient subscribed", "recipient", recipient, "matchID", chosen.ID)
	m.reply(ctx, recipient, m.messages.Text(msgcat.SelectConfirm, map[string]string{
		"Home": chosen.HomeName(),
		"Away": chosen.AwayName(),
	}))
	return ActionSubscribe
}

// listMatches never fails: partial or empty results stand in for provider errors.
func (m *Machine) listMatches(ctx context.Context) []match.Match {
	matches, err := m.provider.ListMatches(ctx)
	if err != nil {
		log.Warn("Match listing incomplete", "error", err, "matches", len(matches))
	}
	return matches
}

func (m *Machine) reply(ctx context.Context, recipient, text string) {
	if err := m.sender.SendText(ctx, recipient, text); err != nil {
		log.Error("Failed to send reply", "recipient", recipient, "error", err)
	}
}
