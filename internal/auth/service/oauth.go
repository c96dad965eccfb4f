package service

//go:generate mockgen -destination=../../mocks/mock_provider_verifier.go -package=mocks github.com/mkucukkoc/google-auth-sub002/internal/auth/service ProviderVerifier

import "context"

// ProviderProfile is the identity a provider vouches for.
type ProviderProfile struct {
	Email string
	Name  string
}

// ProviderVerifier exchanges a provider-issued identity token for a verified
// profile. Implementations talk to the external OAuth provider; the core only
// depends on this boundary.
type ProviderVerifier interface {
	Verify(ctx context.Context, provider, idToken string) (*ProviderProfile, error)
}
