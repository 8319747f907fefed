package notifier

import "context"

// Notifier is the outbound side of a chat transport.
// This decouples the bot from the specific chat provider (e.g., Slack).
type Notifier interface {
	// SendText delivers a plain text message to a recipient address.
	SendText(ctx context.Context, recipient, text string) error
}
