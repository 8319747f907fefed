package history

import (
	"context"
	"sync"
)

var _ Store = (*Mock)(nil)

// Mock is an in-memory Store for tests. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	RecordFunc func(ctx context.Context, d Delivery) error

	RecordCalls []Delivery
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Record(ctx context.Context, d Delivery) error {
	m.mu.Lock()
	m.RecordCalls = append(m.RecordCalls, d)
	fn := m.RecordFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, d)
	}
	return nil
}

func (m *Mock) Recent(ctx context.Context, limit int) ([]Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, 0, len(m.RecordCalls))
	for i := len(m.RecordCalls) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.RecordCalls[i])
	}
	return out, nil
}

// Records returns a copy of the recorded deliveries.
func (m *Mock) Records() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Delivery(nil), m.RecordCalls...)
}
