// Package session keeps per-session conversation history in memory.
// History is a bounded context window for answer generation, not a
// durable chat log: restarting the process discards it.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxHistory is the default number of retained exchanges
// (user/assistant pairs) per session.
const DefaultMaxHistory = 2

// Turn is one message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store manages conversation history for all active sessions.
// Each session retains at most maxHistory exchanges; older turns are
// dropped oldest-first.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	maxHistory int
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string][]Turn
}

// New creates a Store retaining maxHistory exchanges per session.
// maxHistory <= 0 selects the default.
func New(maxHistory int, logger *slog.Logger) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		maxHistory: maxHistory,
		logger:     logger,
		sessions:   make(map[string][]Turn),
	}
}

// Create starts a new empty session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = nil
	s.mu.Unlock()

	s.logger.Debug("created session", "id", id)
	return id
}

// AddExchange records one user query and the assistant's answer. An
// unknown session ID is created implicitly, so clients may supply
// their own IDs. History beyond the retention limit is truncated
// oldest-first.
func (s *Store) AddExchange(sessionID, query, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID],
		Turn{Role: RoleUser, Content: query},
		Turn{Role: RoleAssistant, Content: answer},
	)

	if max := s.maxHistory * 2; len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	s.sessions[sessionID] = turns
}

// History returns a copy of the session's retained turns, oldest
// first. An unknown session yields an empty history.
func (s *Store) History(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// FormattedHistory renders the retained turns as prompt context, one
// "Role: content" line pair per turn. It returns an empty string for
// an unknown or empty session.
func (s *Store) FormattedHistory(sessionID string) string {
	turns := s.History(sessionID)
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		role := "User"
		if t.Role == RoleAssistant {
			role = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, t.Content))
	}
	return strings.Join(lines, "\n")
}

// Clear removes a session and its history.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
