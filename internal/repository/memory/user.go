package memory

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// CreateUser assigns a fresh id and creation timestamp and stores the record.
// Email uniqueness is the caller's job (the auth service checks first).
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	s.users = append(s.users, *user)
	return nil
}

// GetUserByID is an exact-match linear lookup.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return nil, apperror.NotFound("user", id)
	}
	u := s.users[i]
	return &u, nil
}

// GetUserByEmail is an exact-match linear lookup.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFoundMsg("user not found with email " + email)
}

// UpdateUser merges the provided fields into the stored record. Nil fields
// are left untouched.
func (s *Store) UpdateUser(_ context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return nil, apperror.NotFound("user", id)
	}

	u := &s.users[i]
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}

	out := *u
	return &out, nil
}
