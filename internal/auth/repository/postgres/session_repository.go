package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"
)

type SessionRepository struct {
	db DB
}

func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, user_id, refresh_token_hash, device_os, device_model, device_app_version,
		device_platform, device_id, ip_address, user_agent, created_at, last_used_at, expires_at, revoked_at`

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 LIMIT 1;`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, device_os, device_model,
			device_app_version, device_platform, device_id, ip_address, user_agent,
			created_at, last_used_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, s.ID, s.UserID, s.RefreshTokenHash, s.DeviceInfo.OS, s.DeviceInfo.Model,
		s.DeviceInfo.AppVersion, s.DeviceInfo.Platform, s.DeviceID, s.IPAddress,
		s.UserAgent, s.CreatedAt, s.LastUsedAt, s.ExpiresAt, s.RevokedAt)

	return err
}

func (r *SessionRepository) UpdateRefreshToken(ctx context.Context, sessionID, refreshTokenHash string, expiresAt, lastUsedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET refresh_token_hash = $2, expires_at = $3, last_used_at = $4
		WHERE id = $1
	`, sessionID, refreshTokenHash, expiresAt, lastUsedAt)

	return err
}

func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL
	`, id, at)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) RevokeAllByUserID(ctx context.Context, userID string, at time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL
	`, userID, at)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

func (r *SessionRepository) FindActiveByUserID(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
		ORDER BY last_used_at DESC;`

	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func (r *SessionRepository) RevokeExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = $1 WHERE revoked_at IS NULL AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.RefreshTokenHash, &s.DeviceInfo.OS, &s.DeviceInfo.Model,
		&s.DeviceInfo.AppVersion, &s.DeviceInfo.Platform, &s.DeviceID, &s.IPAddress,
		&s.UserAgent, &s.CreatedAt, &s.LastUsedAt, &s.ExpiresAt, &s.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
