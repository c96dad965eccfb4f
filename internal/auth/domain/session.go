package domain

import "time"

// DeviceInfo is opaque client-supplied metadata attached to a session. It is
// recorded as-is and never validated.
type DeviceInfo struct {
	OS         string `json:"os"`
	Model      string `json:"model"`
	AppVersion string `json:"appVersion"`
	Platform   string `json:"platform"`
}

// Session binds a user, a device and the current refresh-token hash. The raw
// refresh token is never stored; revocation is a soft-delete via RevokedAt.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	DeviceInfo       DeviceInfo
	DeviceID         string
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastUsedAt       time.Time
	ExpiresAt        time.Time
	RevokedAt        *time.Time
}

// IsRevoked reports whether the session has been permanently killed.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsExpiredBeyond reports whether the session expired more than grace ago.
// Expiry inside the grace window still counts as live, which absorbs clock
// skew between a client refresh and server-side expiry.
func (s *Session) IsExpiredBeyond(now time.Time, grace time.Duration) bool {
	return now.After(s.ExpiresAt) && now.Sub(s.ExpiresAt) > grace
}
