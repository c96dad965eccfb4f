package dto

import (
	"time"

	"github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"
)

type UserOutput struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name,omitempty"`
	Avatar          string `json:"avatar,omitempty"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

func NewUserOutput(u *domain.User) UserOutput {
	return UserOutput{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Avatar:          u.AvatarURL,
		IsEmailVerified: u.IsEmailVerified,
	}
}

type TokenResponse struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	SessionID        string    `json:"sessionId"`
}

type AuthResponse struct {
	TokenResponse
	User UserOutput `json:"user"`
}

type SessionOutput struct {
	ID         string            `json:"id"`
	DeviceInfo domain.DeviceInfo `json:"device"`
	DeviceID   string            `json:"deviceId,omitempty"`
	IPAddress  string            `json:"ipAddress,omitempty"`
	UserAgent  string            `json:"userAgent,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	LastUsedAt time.Time         `json:"lastUsedAt"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

func NewSessionOutput(s *domain.Session) SessionOutput {
	return SessionOutput{
		ID:         s.ID,
		DeviceInfo: s.DeviceInfo,
		DeviceID:   s.DeviceID,
		IPAddress:  s.IPAddress,
		UserAgent:  s.UserAgent,
		CreatedAt:  s.CreatedAt,
		LastUsedAt: s.LastUsedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}
