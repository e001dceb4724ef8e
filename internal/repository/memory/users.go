package memory

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/model"
)

// CreateUser stores u with a normalized email.  Emails are unique across
// tenants since login does not name one.
func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, cur := range s.st.users {
		if cur.Email == u.Email {
			return booking.ErrConflict
		}
	}
	s.st.nextUser++
	now := time.Now().UTC()
	u.ID = s.st.nextUser
	u.CreatedAt, u.UpdatedAt = now, now
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, booking.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return model.User{}, booking.ErrNotFound
	}
	return u, nil
}

// ---- refresh tokens ----

func (s *Store) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.tokens[tokenHash] = refreshToken{userID: userID, expiresAt: exp}
	return nil
}

// ValidateRefresh returns the owner of a live token, or booking.ErrNotFound.
func (s *Store) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.st.tokens[tokenHash]
	if !ok || t.revoked || time.Now().UTC().After(t.expiresAt) || !s.st.users[t.userID].IsActive {
		return 0, booking.ErrNotFound
	}
	return t.userID, nil
}

func (s *Store) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.st.tokens[tokenHash]; ok {
		t.revoked = true
		s.st.tokens[tokenHash] = t
	}
	return nil
}

func (s *Store) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.st.tokens {
		if t.userID == userID {
			t.revoked = true
			s.st.tokens[k] = t
		}
	}
	return nil
}

func (s *Store) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, t := range s.st.tokens {
		if t.expiresAt.Before(cutoff) {
			delete(s.st.tokens, k)
			n++
		}
	}
	return n, nil
}
