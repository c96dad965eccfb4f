package service

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkucukkoc/google-auth-sub002/config"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/dto"
	"github.com/mkucukkoc/google-auth-sub002/internal/event"
	autherror "github.com/mkucukkoc/google-auth-sub002/internal/errors"
	"github.com/mkucukkoc/google-auth-sub002/pkg/constant"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserService owns identity records: registration, credential verification
// and the failed-attempt lockout counters.
type UserService struct {
	repo        domain.UserRepository
	hasher      *Hasher
	events      event.Publisher
	maxAttempts int
	lockout     time.Duration
}

func NewUserService(repo domain.UserRepository, hasher *Hasher, events event.Publisher, cfg *config.Config) *UserService {
	return &UserService{
		repo:        repo,
		hasher:      hasher,
		events:      events,
		maxAttempts: cfg.LoginMaxAttempts,
		lockout:     time.Duration(cfg.LockoutMinutes) * time.Minute,
	}
}

// NormalizeEmail folds an address to its canonical lookup form. Email
// equality is always case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, error) {
	email := NormalizeEmail(input.Email)

	if err := validateRegistration(email, input.Password); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, autherror.ErrEmailAlreadyRegistered
	}

	hash, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Provider:     constant.ProviderPassword,
		Name:         strings.TrimSpace(input.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies email/password and maintains the lockout counters.
// Checks run in a fixed order so failure reasons stay deterministic:
// lookup, lockout, password.
func (s *UserService) Authenticate(ctx context.Context, email, password, ip string) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Indistinguishable from a wrong password to avoid enumeration.
		return nil, autherror.ErrInvalidCredentials
	}

	if user.IsLocked() {
		return nil, autherror.ErrAccountLocked
	}

	if user.PasswordHash == "" || !s.hasher.VerifyPassword(password, user.PasswordHash) {
		if err := s.IncrementFailedAttempts(ctx, user, ip); err != nil {
			return nil, err
		}
		return nil, autherror.ErrInvalidCredentials
	}

	if err := s.ResetFailedAttempts(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetOrCreateOAuthUser resolves a provider-verified profile to a user,
// creating the record on first sight. OAuth users are pre-verified and carry
// no password hash.
func (s *UserService) GetOrCreateOAuthUser(ctx context.Context, provider, email, name string) (*domain.User, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if user.IsLocked() {
			return nil, autherror.ErrAccountLocked
		}
		return user, s.ResetFailedAttempts(ctx, user)
	}

	return s.CreateOAuthUser(ctx, provider, email, name)
}

func (s *UserService) CreateOAuthUser(ctx context.Context, provider, email, name string) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:              uuid.NewString(),
		Email:           NormalizeEmail(email),
		Provider:        provider,
		Name:            strings.TrimSpace(name),
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) IsEmailRegistered(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func (s *UserService) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

// IncrementFailedAttempts bumps the counter; the Nth cumulative failure
// (N = LoginMaxAttempts) starts the lockout window.
func (s *UserService) IncrementFailedAttempts(ctx context.Context, user *domain.User, ip string) error {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= s.maxAttempts {
		lockedUntil := time.Now().UTC().Add(s.lockout)
		user.LockedUntil = &lockedUntil

		if err := s.events.Publish(ctx, event.SecurityEvent{
			Type:      event.TypeAccountLocked,
			UserID:    user.ID,
			Email:     user.Email,
			IPAddress: ip,
		}); err != nil {
			log.Printf("warn: failed to publish account_locked event for user %s: %v", user.ID, err)
		}
	}

	return s.UpdateUser(ctx, user)
}

// ResetFailedAttempts clears the counter and any lock after a successful
// authentication, and stamps the login time.
func (s *UserService) ResetFailedAttempts(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	return s.UpdateUser(ctx, user)
}

func validateRegistration(email, password string) error {
	verr := autherror.NewValidationError()
	if !emailPattern.MatchString(email) {
		verr.Add("email", "must be a valid email address")
	}
	if len(password) < constant.MinPasswordLength {
		verr.Add("password", "must be at least 8 characters")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
