// Package event publishes security-relevant auth events to a message broker.
// Publishing is fire-and-forget: failures are logged and returned but must
// never fail the request that triggered them.
package event

import (
	"context"
	"time"
)

const (
	TypeLogin         = "login"
	TypeAccountLocked = "account_locked"
	TypeReuseDetected = "reuse_detected"
	TypeLogoutAll     = "logout_all"
)

type SecurityEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
	Email      string    `json:"email,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

//go:generate mockgen -destination=../mocks/mock_publisher.go -package=mocks github.com/mkucukkoc/google-auth-sub002/internal/event Publisher

type Publisher interface {
	Publish(ctx context.Context, e SecurityEvent) error
}

// NopPublisher drops every event. Used in tests and when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, SecurityEvent) error { return nil }
