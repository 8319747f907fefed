package pubsub

import "context"

// Publisher emits bot events to an external message bus.
type Publisher interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
	Close() error
}
