package pandascore

import (
	"context"
	"sync"

	"github.com/Marcos5333/BotHltv/internal/match"
)

var _ Provider = (*MockClient)(nil)

// MockClient is a mock implementation of the Provider interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	ListMatchesFunc func(ctx context.Context) ([]match.Match, error)
	LatestRoundFunc func(ctx context.Context, matchID string) (*match.GameRound, error)

	// Call records
	ListMatchesCalls int
	LatestRoundCalls []string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListMatchesCalls = 0
	m.LatestRoundCalls = nil
}

func (m *MockClient) ListMatches(ctx context.Context) ([]match.Match, error) {
	m.mu.Lock()
	m.ListMatchesCalls++
	fn := m.ListMatchesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return []match.Match{}, nil
}

func (m *MockClient) LatestRound(ctx context.Context, matchID string) (*match.GameRound, error) {
	m.mu.Lock()
	m.LatestRoundCalls = append(m.LatestRoundCalls, matchID)
	fn := m.LatestRoundFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID)
	}
	return nil, nil
}

// Calls returns the number of ListMatches calls.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListMatchesCalls
}
