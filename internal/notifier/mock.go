package notifier

import (
	"context"
	"sync"
)

var _ Notifier = (*Mock)(nil)

// Message is one recorded SendText call.
type Message struct {
	Recipient string
	Text      string
}

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spy
	SendTextFunc func(ctx context.Context, recipient, text string) error

	// Call records
	SendTextCalls []Message
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendText(ctx context.Context, recipient, text string) error {
	m.mu.Lock()
	m.SendTextCalls = append(m.SendTextCalls, Message{Recipient: recipient, Text: text})
	fn := m.SendTextFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, recipient, text)
	}
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *Mock) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.SendTextCalls...)
}

// SentTo returns the texts delivered to recipient, in order.
func (m *Mock) SentTo(recipient string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.SendTextCalls {
		if msg.Recipient == recipient {
			out = append(out, msg.Text)
		}
	}
	return out
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTextCalls = nil
}
