package conversation

import (
	"context"
	"sync"

	"movebot/models"
)

// MemoryStore is the default volatile in-process store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
	locks    *lockTable
}

type sessionState struct {
	messages []models.Message
	meta     models.SessionMeta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*sessionState),
		locks:    newLockTable(),
	}
}

func (s *MemoryStore) Lock(sessionID string) func() {
	return s.locks.Lock(sessionID)
}

// state returns the session, creating it on first use. The returned
// pointer is only mutated under the session lock.
func (s *MemoryStore) state(sessionID string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		st = &sessionState{}
		s.sessions[sessionID] = st
	}
	return st
}

func (s *MemoryStore) History(_ context.Context, sessionID string) ([]models.Message, error) {
	st := s.state(sessionID)
	return append([]models.Message(nil), st.messages...), nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, msgs ...models.Message) error {
	st := s.state(sessionID)
	st.messages = trim(append(st.messages, msgs...))
	return nil
}

func (s *MemoryStore) Meta(_ context.Context, sessionID string) (models.SessionMeta, error) {
	return s.state(sessionID).meta, nil
}

func (s *MemoryStore) SetMeta(_ context.Context, sessionID string, meta models.SessionMeta) error {
	s.state(sessionID).meta = meta
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
