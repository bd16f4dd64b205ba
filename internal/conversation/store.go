// Package conversation holds per-session question/answer history.
package conversation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// session is the history of one session. Each session carries its own
// mutex so appends for unrelated sessions never serialize on each other.
type session struct {
	mu    sync.Mutex
	turns []Turn
}

// Store keeps one append-only turn history per session.
//
// Sessions are created lazily: reading an unknown session id returns an
// empty history, never an error, and the first Append creates the entry.
// Histories live in process memory only and are lost on restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session

	// maxTurns bounds each session's history; the oldest turns are
	// evicted once the bound is exceeded. Zero means unbounded.
	maxTurns int

	logger *zap.Logger
}

// NewStore creates a conversation store. maxTurns bounds each session's
// retained history (0 = unbounded).
func NewStore(maxTurns int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// getOrCreate returns the session entry, creating it lazily.
func (s *Store) getOrCreate(sessionID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[sessionID] = sess
	return sess
}

// Append records a completed (question, answer) pair for the session.
// Turns are recorded in the order Append is called; callers appending
// concurrently for one session serialize on the session's lock.
func (s *Store) Append(sessionID, question, answer string) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, Turn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})

	if s.maxTurns > 0 && len(sess.turns) > s.maxTurns {
		evicted := len(sess.turns) - s.maxTurns
		sess.turns = append([]Turn(nil), sess.turns[evicted:]...)
		s.logger.Debug("evicted oldest conversation turns",
			zap.String("session_id", sessionID),
			zap.Int("evicted", evicted),
		)
	}
}

// History returns the session's turns in chronological order. An unknown
// session id yields an empty slice.
func (s *Store) History(sessionID string) []Turn {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return []Turn{}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// Clear removes the session's history, returning it to the empty state.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	s.logger.Info("conversation cleared", zap.String("session_id", sessionID))
}

// FormatRecent renders the most recent n turns as a transcript, oldest
// first, for inclusion in generation prompts. Returns "" for an empty or
// unknown session.
func (s *Store) FormatRecent(sessionID string, n int) string {
	turns := s.History(sessionID)
	if len(turns) == 0 || n <= 0 {
		return ""
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n\n", t.Question, t.Answer)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
