package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/mkucukkoc/google-auth-sub002/internal/auth/service TokenGenerator

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	autherror "github.com/mkucukkoc/google-auth-sub002/internal/errors"
)

type TokenGenerator interface {
	// CreateAccessToken mints a signed access token bound to the session.
	// A jti is generated when the caller passes "".
	CreateAccessToken(userID, sessionID, jti string) (string, time.Time, error)
	VerifyAccessToken(tokenString string) (*AccessTokenClaims, error)
	GetAccessTokenExpiry() time.Duration
}

// AccessTokenClaims is the payload of an access token. Never persisted;
// rebuilt fresh on every sign.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type TokenService struct {
	secret            string
	issuer            string
	audience          string
	accessTokenExpiry time.Duration
}

func NewTokenService(secret, issuer, audience string, accessMinutes int) *TokenService {
	return &TokenService{
		secret:            secret,
		issuer:            issuer,
		audience:          audience,
		accessTokenExpiry: time.Duration(accessMinutes) * time.Minute,
	}
}

func (ts *TokenService) CreateAccessToken(userID, sessionID, jti string) (string, time.Time, error) {
	if jti == "" {
		jti = uuid.NewString()
	}

	now := time.Now()
	expiresAt := now.Add(ts.accessTokenExpiry)

	claims := AccessTokenClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    ts.issuer,
			Audience:  jwt.ClaimStrings{ts.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// VerifyAccessToken parses and validates the given access token string.
// HS256 is the only accepted algorithm; anything else is rejected outright
// to block algorithm-confusion attacks.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherror.ErrInvalidOrExpiredToken
		}
		return []byte(ts.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ts.issuer),
		jwt.WithAudience(ts.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, autherror.ErrInvalidOrExpiredToken
	}

	return claims, nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.accessTokenExpiry
}

// GetExpiration reads the exp claim without verifying the signature. Best
// effort only (cache TTL hints and the like); never use the result for
// access-control decisions.
func GetExpiration(tokenString string) (time.Time, error) {
	claims := &AccessTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, autherror.ErrInvalidOrExpiredToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, autherror.ErrInvalidOrExpiredToken
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether the unverified exp claim has passed. Malformed
// tokens count as expired.
func IsExpired(tokenString string) bool {
	exp, err := GetExpiration(tokenString)
	if err != nil {
		return true
	}
	return time.Now().After(exp)
}
