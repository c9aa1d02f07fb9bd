package relay

import (
	"context"
	"strings"
	"sync"

	"chatrelay/config"
	"chatrelay/model"
	"chatrelay/storage"
)

// DefaultSessionID is used when a request names no session.
const DefaultSessionID = "default"

// ChatResult is what a chat request returns to its caller.
type ChatResult struct {
	Reply     string
	Provider  string
	SessionID string
	Exhausted bool
}

// Service answers chat messages against per-session history.
//
// It owns the only write path into the session store: the user turn and
// the reply turn are appended together after a provider answered. When
// the chain is exhausted nothing is stored, so a transcript never holds a
// user turn without its reply.
type Service struct {
	store  *storage.SessionStore
	orch   *Orchestrator
	strict bool

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes requests for one session. refs counts holders and
// waiters; the entry is dropped when the last one releases it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewService wires a store and an orchestrator. In strict mode Chat fails
// with ErrConfigurationMissing when no provider has credentials.
func NewService(store *storage.SessionStore, orch *Orchestrator, strict bool) *Service {
	return &Service{
		store:  store,
		orch:   orch,
		strict: strict,
		locks:  make(map[string]*sessionLock),
	}
}

// ResolveSessionID maps an empty id to DefaultSessionID.
func ResolveSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultSessionID
	}
	return id
}

// lockSession blocks until the caller holds id's lock, so appends land in
// handling order. Every call must be paired with unlockSession.
func (s *Service) lockSession(id string) *sessionLock {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *Service) unlockSession(id string, l *sessionLock) {
	l.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

// Chat sends message for sessionID through the fallback chain.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (ChatResult, error) {
	id := ResolveSessionID(sessionID)
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatResult{SessionID: id}, ErrEmptyInput
	}
	if s.strict && len(s.orch.Available()) == 0 {
		return ChatResult{SessionID: id}, ErrConfigurationMissing
	}

	lock := s.lockSession(id)
	defer s.unlockSession(id, lock)

	transcript := s.store.GetOrCreate(id)

	if config.Debug {
		config.Logger.Debug("[Relay] chat",
			"request_id", RequestID(ctx),
			"session_id", id,
			"history", len(transcript),
			"message", config.Preview(message, 60))
	}

	reply := s.orch.Run(withSessionID(ctx, id), transcript, message)

	if !reply.Exhausted {
		s.store.Append(id,
			model.NewTurn(model.RoleUser, message),
			model.NewTurn(model.RoleAssistant, reply.Text),
		)
	}

	return ChatResult{
		Reply:     reply.Text,
		Provider:  reply.Provider,
		SessionID: id,
		Exhausted: reply.Exhausted,
	}, nil
}

// Reset drops the transcript for sessionID and returns the resolved id.
func (s *Service) Reset(sessionID string) string {
	id := ResolveSessionID(sessionID)

	lock := s.lockSession(id)
	defer s.unlockSession(id, lock)

	s.store.Clear(id)
	config.Logger.Info("[Relay] session reset", "session_id", id)
	return id
}

// History returns a copy of the stored transcript for sessionID.
func (s *Service) History(sessionID string) []model.Turn {
	id := ResolveSessionID(sessionID)
	if !s.store.Exists(id) {
		return []model.Turn{}
	}
	return s.store.GetOrCreate(id)
}

// Providers returns the chain in priority order.
func (s *Service) Providers() []model.Provider {
	return s.orch.Providers()
}

// AvailableProviders returns the names of providers with credentials.
func (s *Service) AvailableProviders() []string {
	return s.orch.Available()
}
