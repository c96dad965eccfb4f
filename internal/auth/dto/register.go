package dto

import "github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"

type RegisterInput struct {
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	Name      string            `json:"name"`
	Device    domain.DeviceInfo `json:"device"`
	DeviceID  string            `json:"deviceId"`
	IPAddress string            `json:"-"`
	UserAgent string            `json:"-"`
}
