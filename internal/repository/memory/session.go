package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkarim/marketplace/internal/apperror"
)

// CreateSession generates a fresh opaque token and records the mapping.
// UUIDv4 gives 122 bits of randomness — globally unique and unguessable.
func (s *Store) CreateSession(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	sess := session{userID: userID}
	if s.cfg.SessionTTL > 0 {
		sess.expiresAt = time.Now().Add(s.cfg.SessionTTL)
	}
	s.sessions[token] = sess
	return token, nil
}

// ResolveSession returns the user id the token belongs to. Expired tokens
// (only possible when a TTL was configured) are removed on sight and treated
// as unknown.
func (s *Store) ResolveSession(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return "", apperror.NotFoundMsg("session not found")
	}
	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return "", apperror.NotFoundMsg("session expired")
	}
	return sess.userID, nil
}

// DeleteSession removes the mapping. Returns false when the token was
// already absent, making logout idempotent.
func (s *Store) DeleteSession(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[token]
	delete(s.sessions, token)
	return ok, nil
}
