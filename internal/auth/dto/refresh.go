package dto

type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
	SessionID    string `json:"sessionId"`
	DeviceID     string `json:"deviceId"`
}

type LogoutInput struct {
	SessionID string `json:"sessionId"`
}
