package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/mkucukkoc/google-auth-sub002/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_session_repository.go -package=mocks github.com/mkucukkoc/google-auth-sub002/internal/auth/domain SessionRepository

// UserRepository persists identity records. Lookups return (nil, nil) when no
// record exists; errors are reserved for store failures.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// SessionRepository persists sessions. Sessions are never physically deleted
// here; Revoke and RevokeAllByUserID set RevokedAt and cleanup is a batch job.
type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*Session, error)
	Create(ctx context.Context, session *Session) error
	// UpdateRefreshToken overwrites the stored hash, expiry and last-used
	// timestamp of an existing session row in place.
	UpdateRefreshToken(ctx context.Context, sessionID, refreshTokenHash string, expiresAt, lastUsedAt time.Time) error
	// Revoke returns false when the session is absent or already revoked.
	Revoke(ctx context.Context, id string, at time.Time) (bool, error)
	RevokeAllByUserID(ctx context.Context, userID string, at time.Time) (int, error)
	FindActiveByUserID(ctx context.Context, userID string, now time.Time) ([]*Session, error)
	RevokeExpired(ctx context.Context, now time.Time) (int, error)
}
