package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/Marcos5333/BotHltv/internal/notifier"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

const sendTimeout = 10 * time.Second

// Notifier posts direct messages through the Slack Web API.
// Recipients are DM channel IDs.
type Notifier struct {
	api     slackClient
	metrics metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:     slack.New(token),
		metrics: metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:     api,
		metrics: metrics,
	}
}

func (s *Notifier) SendText(ctx context.Context, recipient, text string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		recipient,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncOutboundMessages(metrics.ResultFailed)
		log.Error("Failed to send Slack message", "error", err, "channel", recipient)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncOutboundMessages(metrics.ResultSent)
	log.Debug("Sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}
