package experience

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"nfcExperience/business/nfcparams"
	"nfcExperience/pkg/logger"
	"nfcExperience/pkg/metrics"
)

// Outcome is the cached result of the last resolution in a session.
type Outcome struct {
	Resolution   *Resolution `json:"resolution,omitempty"`
	ErrorCode    Code        `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

func outcomeOf(res Resolution, err error) Outcome {
	if err == nil {
		return Outcome{Resolution: &res}
	}
	var e *Error
	if errors.As(err, &e) {
		return Outcome{ErrorCode: e.Code, ErrorMessage: e.Message}
	}
	return Outcome{ErrorCode: CodeNetwork, ErrorMessage: err.Error()}
}

func (o Outcome) result() (Resolution, error) {
	if o.ErrorCode != "" {
		return Resolution{}, newError(o.ErrorCode, o.ErrorMessage)
	}
	if o.Resolution == nil {
		return Resolution{}, newError(CodeNetwork, "empty session outcome")
	}
	return *o.Resolution, nil
}

// Session is the state kept for one mounted experience page.
type Session struct {
	ID        string    `json:"id"`
	LastKey   string    `json:"last_key"`
	Outcome   Outcome   `json:"outcome"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionStore interface {
	Get(ctx context.Context, id string) (Session, bool, error)
	Put(ctx context.Context, session Session) error
}

// ResolveInSession resolves params at most once per identity triple per
// session. A repeated call with the same (uid, prd, cc) gets the cached
// outcome without touching the gateway. An empty sessionID disables the
// guard.
func (s *Service) ResolveInSession(ctx context.Context, sessionID string, params nfcparams.Params, userAgent string) (Resolution, error) {
	if sessionID == "" {
		return s.Resolve(ctx, params, userAgent)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	key := params.Key()
	session, found, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		logger.Warn("session lookup failed, resolving without guard", "session", sessionID, "error", err)
	}
	if found && session.LastKey == key {
		metrics.SessionGuardHits.Inc()
		return session.Outcome.result()
	}

	res, resErr := s.Resolve(ctx, params, userAgent)

	err = s.sessions.Put(ctx, Session{
		ID:        sessionID,
		LastKey:   key,
		Outcome:   outcomeOf(res, resErr),
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		logger.Warn("failed to store session outcome", "session", sessionID, "error", err)
	}

	return res, resErr
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

// Lock blocks until key is free and returns its unlock func. Entries are
// dropped once no goroutine holds or waits on them.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

const maxMemorySessions = 10000

// MemorySessionStore keeps sessions in process memory with a TTL.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	session   Session
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return Session{}, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.sessions, id)
		return Session{}, false, nil
	}
	return entry.session, true, nil
}

func (m *MemorySessionStore) Put(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = memorySession{
		session:   session,
		expiresAt: m.now().Add(m.ttl),
	}
	m.evict()
	return nil
}

// evict drops expired sessions, then the oldest ones above the cap.
// Caller holds m.mu.
func (m *MemorySessionStore) evict() {
	if len(m.sessions) <= maxMemorySessions {
		return
	}

	now := m.now()
	for id, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}

	toDrop := len(m.sessions) - maxMemorySessions
	if toDrop <= 0 {
		return
	}

	type info struct {
		id        string
		expiresAt time.Time
	}
	infos := make([]info, 0, len(m.sessions))
	for id, entry := range m.sessions {
		infos = append(infos, info{id: id, expiresAt: entry.expiresAt})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].expiresAt.Before(infos[j].expiresAt)
	})
	for i := 0; i < toDrop; i++ {
		delete(m.sessions, infos[i].id)
	}
}
