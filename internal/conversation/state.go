package conversation

import (
	"sync"

	"github.com/Marcos5333/BotHltv/internal/match"
)

// State is the per-recipient menu position. The concrete types are Idle,
// MenuOpen and SelectingMatch.
type State interface {
	state()
}

type Idle struct{}

type MenuOpen struct{}

// SelectingMatch holds the live list that was shown, so a numeric reply
// resolves against exactly what the recipient saw.
type SelectingMatch struct {
	Candidates []match.Match
}

func (Idle) state()           {}
func (MenuOpen) state()       {}
func (SelectingMatch) state() {}

// StateStore keeps one State per recipient. Recipients in Idle are not stored.
type StateStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]State)}
}

func (s *StateStore) Get(recipient string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[recipient]; ok {
		return st
	}
	return Idle{}
}

func (s *StateStore) Set(recipient string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, idle := st.(Idle); idle || st == nil {
		delete(s.states, recipient)
		return
	}
	s.states[recipient] = st
}

func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
