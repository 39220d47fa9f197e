// Package conversation owns per-session dialogue state: the ordered
// message log with its bounded trim window, and the small ephemeral flag
// set used by the call-request and long-distance flows.
package conversation

import (
	"context"
	"sync"

	"movebot/models"
)

// KeepRecent is the number of most recent turns retained after the
// system preamble. Older turns are permanently forgotten.
const KeepRecent = 11

// Store is the session state store. Turns for a single session must be
// serialized: callers hold the unlock func returned by Lock for the
// whole turn, and all other methods assume that lock is held.
type Store interface {
	// Lock serializes turn processing for a session key.
	Lock(sessionID string) (unlock func())
	History(ctx context.Context, sessionID string) ([]models.Message, error)
	// Append adds messages and applies the trim window (preamble slot
	// plus the most recent KeepRecent entries).
	Append(ctx context.Context, sessionID string, msgs ...models.Message) error
	Meta(ctx context.Context, sessionID string) (models.SessionMeta, error)
	SetMeta(ctx context.Context, sessionID string, meta models.SessionMeta) error
	Reset(ctx context.Context, sessionID string) error
}

// trim applies the bounded window: the system preamble (index 0, when
// present) plus the last KeepRecent messages.
func trim(msgs []models.Message) []models.Message {
	if len(msgs) > 0 && msgs[0].Role == models.RoleSystem {
		if len(msgs) <= KeepRecent+1 {
			return msgs
		}
		trimmed := make([]models.Message, 0, KeepRecent+1)
		trimmed = append(trimmed, msgs[0])
		return append(trimmed, msgs[len(msgs)-KeepRecent:]...)
	}
	if len(msgs) <= KeepRecent {
		return msgs
	}
	return append([]models.Message(nil), msgs[len(msgs)-KeepRecent:]...)
}

// lockTable hands out one mutex per session key. Single-process by
// design; sessions have no cross-process persistence guarantee.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) Lock(sessionID string) func() {
	t.mu.Lock()
	l, ok := t.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[sessionID] = l
	}
	t.mu.Unlock()
	l.Lock()
	return l.Unlock
}
