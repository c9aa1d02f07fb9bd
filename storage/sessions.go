package storage

import (
	"sync"

	"chatrelay/model"
)

// SessionStore maps session ids to transcripts. It lives for the life of
// the process; nothing is written to disk.
//
// Callers never hold a reference into the store: reads return copies and
// writes go through Append, so stored turns cannot change after the fact.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]model.Turn
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]model.Turn),
	}
}

// GetOrCreate returns a copy of the transcript for id, registering an
// empty one if the id has not been seen.
func (s *SessionStore) GetOrCreate(id string) []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions[id]
	if !ok {
		turns = []model.Turn{}
		s.sessions[id] = turns
	}
	return model.CopyTurns(turns)
}

// Append adds turns to the end of id's transcript in one step.
func (s *SessionStore) Append(id string, turns ...model.Turn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = append(s.sessions[id], turns...)
}

// Clear removes id entirely. Clearing an unknown id is a no-op.
func (s *SessionStore) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Len returns the number of turns stored for id.
func (s *SessionStore) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions[id])
}

// Exists reports whether id is registered.
func (s *SessionStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[id]
	return ok
}

// Count returns the number of registered sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
