// Package memory provides in-memory repository implementations, selected at
// construction time for tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*domain.User{}}
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = copyUser(user)
	return nil
}

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: map[string]*domain.Session{}}
}

func (r *SessionRepository) GetByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(s), nil
}

func (r *SessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *SessionRepository) UpdateRefreshToken(_ context.Context, sessionID, refreshTokenHash string, expiresAt, lastUsedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.RefreshTokenHash = refreshTokenHash
		s.ExpiresAt = expiresAt
		s.LastUsedAt = lastUsedAt
	}
	return nil
}

func (r *SessionRepository) Revoke(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.RevokedAt != nil {
		return false, nil
	}

	revokedAt := at
	s.RevokedAt = &revokedAt
	return true, nil
}

func (r *SessionRepository) RevokeAllByUserID(_ context.Context, userID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			revokedAt := at
			s.RevokedAt = &revokedAt
			count++
		}
	}
	return count, nil
}

func (r *SessionRepository) FindActiveByUserID(_ context.Context, userID string, now time.Time) ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil && now.Before(s.ExpiresAt) {
			active = append(active, copySession(s))
		}
	}
	return active, nil
}

func (r *SessionRepository) RevokeExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.sessions {
		if s.RevokedAt == nil && !now.Before(s.ExpiresAt) {
			revokedAt := now
			s.RevokedAt = &revokedAt
			count++
		}
	}
	return count, nil
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	return &cp
}

func copySession(s *domain.Session) *domain.Session {
	cp := *s
	return &cp
}
