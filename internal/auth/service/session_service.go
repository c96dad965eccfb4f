package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mkucukkoc/google-auth-sub002/config"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/dto"
	"github.com/mkucukkoc/google-auth-sub002/internal/event"
	autherror "github.com/mkucukkoc/google-auth-sub002/internal/errors"
	"github.com/mkucukkoc/google-auth-sub002/pkg/constant"
)

// SessionService owns the session lifecycle: issuance, refresh-token
// rotation with reuse detection, and revocation.
type SessionService struct {
	sessions   domain.SessionRepository
	tokens     TokenGenerator
	hasher     *Hasher
	events     event.Publisher
	refreshTTL time.Duration
	grace      time.Duration
}

func NewSessionService(
	sessions domain.SessionRepository,
	tokens TokenGenerator,
	hasher *Hasher,
	events event.Publisher,
	cfg *config.Config,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		tokens:     tokens,
		hasher:     hasher,
		events:     events,
		refreshTTL: time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		grace:      time.Duration(cfg.RefreshGraceMin) * time.Minute,
	}
}

// CreateSession issues a new session and token pair for a device login. The
// raw refresh token is surfaced exactly once, here; only its hash persists.
func (s *SessionService) CreateSession(
	ctx context.Context,
	userID string,
	device domain.DeviceInfo,
	deviceID, ip, userAgent string,
) (*domain.Session, *dto.TokenResponse, error) {
	raw, err := newRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.HashRefreshToken(raw)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		RefreshTokenHash: hash,
		DeviceInfo:       device,
		DeviceID:         deviceID,
		IPAddress:        ip,
		UserAgent:        userAgent,
		CreatedAt:        now,
		LastUsedAt:       now,
		ExpiresAt:        now.Add(s.refreshTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	accessToken, accessExp, err := s.tokens.CreateAccessToken(userID, session.ID, "")
	if err != nil {
		return nil, nil, err
	}

	if err := s.events.Publish(ctx, event.SecurityEvent{
		Type:      event.TypeLogin,
		UserID:    userID,
		SessionID: session.ID,
		IPAddress: ip,
	}); err != nil {
		log.Printf("warn: failed to publish login event for user %s: %v", userID, err)
	}

	return session, &dto.TokenResponse{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     raw,
		RefreshExpiresAt: session.ExpiresAt,
		SessionID:        session.ID,
	}, nil
}

// VerifyAndRotateRefreshToken redeems a refresh token for a new pair. A token
// can be redeemed at most once: a hash mismatch on a live session means the
// presented token was already superseded, which is treated as proof of theft
// or replay - every session of the user is torn down and ErrReuseDetected is
// returned so the caller can force a full re-login.
func (s *SessionService) VerifyAndRotateRefreshToken(
	ctx context.Context,
	sessionID, rawRefreshToken, deviceID string,
) (*dto.TokenResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, autherror.ErrInvalidRefreshToken
	}

	if session.IsRevoked() {
		return nil, autherror.ErrInvalidRefreshToken
	}

	now := time.Now().UTC()
	if session.IsExpiredBeyond(now, s.grace) {
		return nil, autherror.ErrSessionExpired
	}

	// Device binding is optional: enforced only when the caller supplies an
	// id and it differs from the one recorded at login.
	if deviceID != "" && deviceID != session.DeviceID {
		return nil, autherror.ErrDeviceMismatch
	}

	if !s.hasher.VerifyRefreshToken(rawRefreshToken, session.RefreshTokenHash) {
		if _, err := s.sessions.RevokeAllByUserID(ctx, session.UserID, now); err != nil {
			return nil, err
		}
		if err := s.events.Publish(ctx, event.SecurityEvent{
			Type:      event.TypeReuseDetected,
			UserID:    session.UserID,
			SessionID: session.ID,
		}); err != nil {
			log.Printf("warn: failed to publish reuse_detected event for user %s: %v", session.UserID, err)
		}
		return nil, autherror.ErrReuseDetected
	}

	newRaw, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	newHash, err := s.hasher.HashRefreshToken(newRaw)
	if err != nil {
		return nil, err
	}

	newExpiry := now.Add(s.refreshTTL)
	// Same row, new secret: overwriting the hash is what makes the old raw
	// token permanently unusable.
	if err := s.sessions.UpdateRefreshToken(ctx, session.ID, newHash, newExpiry, now); err != nil {
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.CreateAccessToken(session.UserID, session.ID, "")
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     newRaw,
		RefreshExpiresAt: newExpiry,
		SessionID:        session.ID,
	}, nil
}

// GetLiveSession loads a session and confirms it is neither revoked nor
// expired beyond the grace window. Used by the auth middleware.
func (s *SessionService) GetLiveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, autherror.ErrSessionNotFound
	}
	if session.IsRevoked() || session.IsExpiredBeyond(time.Now().UTC(), s.grace) {
		return nil, autherror.ErrSessionExpired
	}
	return session, nil
}

// RevokeSession is idempotent: revoking an absent or already-revoked session
// returns false without touching RevokedAt.
func (s *SessionService) RevokeSession(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.Revoke(ctx, sessionID, time.Now().UTC())
}

// RevokeAllUserSessions kills every unrevoked session of the user. Used for
// explicit logout-everywhere and as the reuse-detection response.
func (s *SessionService) RevokeAllUserSessions(ctx context.Context, userID string) (int, error) {
	count, err := s.sessions.RevokeAllByUserID(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if err := s.events.Publish(ctx, event.SecurityEvent{
		Type:   event.TypeLogoutAll,
		UserID: userID,
	}); err != nil {
		log.Printf("warn: failed to publish logout_all event for user %s: %v", userID, err)
	}

	return count, nil
}

func (s *SessionService) FindActiveSessionsByUserID(ctx context.Context, userID string) ([]*domain.Session, error) {
	return s.sessions.FindActiveByUserID(ctx, userID, time.Now().UTC())
}

// CleanupExpiredSessions bulk-revokes sessions past their expiry.
// Housekeeping only; expiry is always re-checked live.
func (s *SessionService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	return s.sessions.RevokeExpired(ctx, time.Now().UTC())
}

func newRefreshToken() (string, error) {
	buf := make([]byte, constant.RefreshTokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
