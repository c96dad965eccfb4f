package dto

import "github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"

type LoginInput struct {
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	Device    domain.DeviceInfo `json:"device"`
	DeviceID  string            `json:"deviceId"`
	IPAddress string            `json:"-"`
	UserAgent string            `json:"-"`
}

type OAuthLoginInput struct {
	Provider  string            `json:"provider"`
	IDToken   string            `json:"idToken"`
	Device    domain.DeviceInfo `json:"device"`
	DeviceID  string            `json:"deviceId"`
	IPAddress string            `json:"-"`
	UserAgent string            `json:"-"`
}
