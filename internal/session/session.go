// Package session keeps per-token chat state in memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/pkg/logger"
)

// Session is one conversation. Callers hold the mutex for the duration of
// a chat turn so concurrent requests on the same token serialize.
type Session struct {
	sync.Mutex

	Token      string
	History    []oracle.Message
	LastActive time.Time
}

// Touch refreshes the idle timer.
func (s *Session) Touch() {
	s.LastActive = time.Now()
}

// Config controls the session store.
type Config struct {
	// MaxIdle is how long a session may sit untouched before eviction.
	MaxIdle time.Duration
	Logger  logger.Logger
}

// Store is a mutex-guarded session map.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	maxIdle  time.Duration
	logger   logger.Logger
}

// NewStore creates a session store.
func NewStore(config Config) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		maxIdle:  config.MaxIdle,
		logger:   config.Logger,
	}
}

// GetOrCreate returns the session for the token, creating it on first use.
// An empty token gets a fresh random one.
func (s *Store) GetOrCreate(token string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		token = uuid.NewString()
	}
	sess, ok := s.sessions[token]
	if !ok {
		sess = &Session{Token: token, LastActive: time.Now()}
		s.sessions[token] = sess
		s.logger.Debug("created session", logger.SessionIDField(token))
	}
	return sess
}

// Reset drops the session for the token. Unknown tokens are a no-op.
func (s *Store) Reset(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; ok {
		delete(s.sessions, token)
		s.logger.Info("reset session", logger.SessionIDField(token))
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle removes sessions idle past MaxIdle and reports how many went.
func (s *Store) EvictIdle() int {
	if s.maxIdle <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.maxIdle)
	evicted := 0
	for token, sess := range s.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(s.sessions, token)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("evicted idle sessions", logger.IntField("count", evicted))
	}
	return evicted
}

// Sweep evicts idle sessions on the interval until the stop channel
// closes, reporting the live count through onCount if set.
func (s *Store) Sweep(interval time.Duration, stop <-chan struct{}, onCount func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.EvictIdle()
			if onCount != nil {
				onCount(s.Len())
			}
		case <-stop:
			return
		}
	}
}
