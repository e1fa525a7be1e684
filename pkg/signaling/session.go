package signaling

import "time"

// Sessions records when each connection last joined a room. Diagnostic only.
type Sessions struct {
	joinedAt map[string]time.Time
}

// NewSessions creates an empty tracker
func NewSessions() *Sessions {
	return &Sessions{joinedAt: make(map[string]time.Time)}
}

// RecordJoin stores the join timestamp, replacing any previous one
func (s *Sessions) RecordJoin(connID string, at time.Time) {
	s.joinedAt[connID] = at
}

// JoinedAt returns the last recorded join time
func (s *Sessions) JoinedAt(connID string) (time.Time, bool) {
	at, ok := s.joinedAt[connID]
	return at, ok
}

// Forget drops the record of a disconnected connection
func (s *Sessions) Forget(connID string) {
	delete(s.joinedAt, connID)
}
