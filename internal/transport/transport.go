// Package transport defines the inbound side of a chat connection.
package transport

import (
	"context"
	"time"
)

// Inbound is one text message received from the chat network.
type Inbound struct {
	// Sender is the reply address of the conversation (user or DM channel).
	Sender     string
	Text       string
	FromSelf   bool
	IsGroup    bool
	ReceivedAt time.Time
}

// Source delivers inbound messages until ctx is cancelled or the connection
// fails for good.
type Source interface {
	Run(ctx context.Context, out chan<- Inbound) error
}
