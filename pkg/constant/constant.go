package constant

// Auth providers recorded on the user row.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderApple    = "apple"
)

// Behavioral defaults. Overridable through config, but the values ship as-is
// for compatibility with existing clients.
const (
	DefaultAccessTokenExpiryMin  = 15
	DefaultRefreshTokenTTLDays   = 30
	DefaultLoginMaxAttempts      = 5
	DefaultLockoutMinutes        = 30
	DefaultRefreshGraceMinutes   = 5
	DefaultTokenIssuer           = "google-auth-sub002"
	DefaultTokenAudience         = "mobile-app"
	MinPasswordLength            = 8
	RefreshTokenByteLength       = 48
)
