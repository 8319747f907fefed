// Package slack receives direct messages over Slack Socket Mode.
package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/Marcos5333/BotHltv/internal/transport"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

var _ transport.Source = (*Listener)(nil)

// Listener turns Socket Mode message events into transport.Inbound values.
type Listener struct {
	api       *slack.Client
	client    *socketmode.Client
	botUserID string
}

// NewListener creates a Socket Mode listener. appToken is the xapp- level token.
func NewListener(botToken, appToken string) *Listener {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &Listener{
		api:    api,
		client: socketmode.New(api),
	}
}

// Run resolves the bot identity, then forwards message events to out until ctx is done.
func (l *Listener) Run(ctx context.Context, out chan<- transport.Inbound) error {
	auth, err := l.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate with Slack: %w", err)
	}
	l.botUserID = auth.UserID
	log.Info("Slack session established", "team", auth.Team, "botUser", auth.UserID)

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.client.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("socket mode stopped: %w", err)
		case evt, ok := <-l.client.Events:
			if !ok {
				return nil
			}
			l.handle(ctx, evt, out)
		}
	}
}

func (l *Listener) handle(ctx context.Context, evt socketmode.Event, out chan<- transport.Inbound) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Debug("Connecting to Slack with Socket Mode")
	case socketmode.EventTypeConnected:
		log.Info("Connected to Slack with Socket Mode")
	case socketmode.EventTypeConnectionError:
		log.Warn("Slack Socket Mode connection failed, retrying")
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if evt.Request != nil {
			l.client.Ack(*evt.Request)
		}
		msg, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok {
			return
		}
		in, ok := l.toInbound(msg)
		if !ok {
			return
		}
		select {
		case out <- in:
		case <-ctx.Done():
		}
	}
}

// toInbound maps a message event. Edits, deletions and other subtypes are dropped.
func (l *Listener) toInbound(ev *slackevents.MessageEvent) (transport.Inbound, bool) {
	if ev.SubType != "" && ev.SubType != "bot_message" {
		return transport.Inbound{}, false
	}
	return transport.Inbound{
		Sender:     ev.Channel,
		Text:       ev.Text,
		FromSelf:   ev.BotID != "" || (l.botUserID != "" && ev.User == l.botUserID),
		IsGroup:    ev.ChannelType != "im",
		ReceivedAt: time.Now(),
	}, true
}
