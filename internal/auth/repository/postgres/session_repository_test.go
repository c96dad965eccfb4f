package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"
)

var sessionCols = []string{
	"id", "user_id", "refresh_token_hash", "device_os", "device_model", "device_app_version",
	"device_platform", "device_id", "ip_address", "user_agent", "created_at", "last_used_at",
	"expires_at", "revoked_at",
}

func newSessionRepoForTest(t *testing.T) (*SessionRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewSessionRepository(mock), mock
}

func testSession(id string) *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		ID:               id,
		UserID:           "user-1",
		RefreshTokenHash: "$argon2id$...",
		DeviceInfo:       domain.DeviceInfo{OS: "iOS 18", Model: "iPhone 15", AppVersion: "1.4.0", Platform: "ios"},
		DeviceID:         "device-1",
		IPAddress:        "203.0.113.1",
		UserAgent:        "test-agent",
		CreatedAt:        now,
		LastUsedAt:       now,
		ExpiresAt:        now.Add(30 * 24 * time.Hour),
	}
}

func sessionRow(mock pgxmock.PgxPoolIface, s *domain.Session) *pgxmock.Rows {
	return mock.NewRows(sessionCols).AddRow(
		s.ID, s.UserID, s.RefreshTokenHash, s.DeviceInfo.OS, s.DeviceInfo.Model,
		s.DeviceInfo.AppVersion, s.DeviceInfo.Platform, s.DeviceID, s.IPAddress,
		s.UserAgent, s.CreatedAt, s.LastUsedAt, s.ExpiresAt, s.RevokedAt,
	)
}

func TestSessionRepository_GetByID(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)
	stored := testSession("session-1")

	mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id = \$1`).
		WithArgs("session-1").
		WillReturnRows(sessionRow(mock, stored))

	session, err := repo.GetByID(context.Background(), "session-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "iPhone 15", session.DeviceInfo.Model)
	assert.False(t, session.IsRevoked())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)

	mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(mock.NewRows(sessionCols))

	session, err := repo.GetByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Create(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)
	s := testSession("session-1")

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(s.ID, s.UserID, s.RefreshTokenHash, s.DeviceInfo.OS, s.DeviceInfo.Model,
			s.DeviceInfo.AppVersion, s.DeviceInfo.Platform, s.DeviceID, s.IPAddress,
			s.UserAgent, s.CreatedAt, s.LastUsedAt, s.ExpiresAt, s.RevokedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_UpdateRefreshToken(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)

	now := time.Now().UTC()
	expiresAt := now.Add(30 * 24 * time.Hour)

	mock.ExpectExec(`UPDATE sessions`).
		WithArgs("session-1", "new-hash", expiresAt, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateRefreshToken(context.Background(), "session-1", "new-hash", expiresAt, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Revoke(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE sessions SET revoked_at = \$2 WHERE id = \$1 AND revoked_at IS NULL`).
		WithArgs("session-1", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	revoked, err := repo.Revoke(context.Background(), "session-1", now)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Already revoked rows match nothing; idempotent false.
	mock.ExpectExec(`UPDATE sessions SET revoked_at = \$2 WHERE id = \$1 AND revoked_at IS NULL`).
		WithArgs("session-1", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	revoked, err = repo.Revoke(context.Background(), "session-1", now)
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_RevokeAllByUserID(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE sessions SET revoked_at = \$2 WHERE user_id = \$1 AND revoked_at IS NULL`).
		WithArgs("user-1", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	count, err := repo.RevokeAllByUserID(context.Background(), "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_FindActiveByUserID(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)
	now := time.Now().UTC()

	rows := sessionRow(mock, testSession("session-1"))
	second := testSession("session-2")
	rows.AddRow(
		second.ID, second.UserID, second.RefreshTokenHash, second.DeviceInfo.OS, second.DeviceInfo.Model,
		second.DeviceInfo.AppVersion, second.DeviceInfo.Platform, second.DeviceID, second.IPAddress,
		second.UserAgent, second.CreatedAt, second.LastUsedAt, second.ExpiresAt, second.RevokedAt,
	)

	mock.ExpectQuery(`SELECT (.+) FROM sessions\s+WHERE user_id = \$1 AND revoked_at IS NULL AND expires_at > \$2`).
		WithArgs("user-1", now).
		WillReturnRows(rows)

	sessions, err := repo.FindActiveByUserID(context.Background(), "user-1", now)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "session-1", sessions[0].ID)
	assert.Equal(t, "session-2", sessions[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_RevokeExpired(t *testing.T) {
	repo, mock := newSessionRepoForTest(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE sessions SET revoked_at = \$1 WHERE revoked_at IS NULL AND expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	count, err := repo.RevokeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
