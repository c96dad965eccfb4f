package domain

import "time"

type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	Provider            string
	Name                string
	AvatarURL           string
	IsEmailVerified     bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastLoginAt         *time.Time
}

// IsLocked reports whether the lockout window is still active.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}
