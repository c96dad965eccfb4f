package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mkucukkoc/google-auth-sub002/internal/auth/domain"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/dto"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/service"
	autherror "github.com/mkucukkoc/google-auth-sub002/internal/errors"
)

const storeTimeout = 10 * time.Second

type AuthHandler struct {
	users    *service.UserService
	sessions *service.SessionService
	verifier service.ProviderVerifier
}

func NewAuthHandler(users *service.UserService, sessions *service.SessionService, verifier service.ProviderVerifier) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, verifier: verifier}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Register(ctx, input)
	if err != nil {
		return errorResponse(c, err)
	}

	_, tokens, err := h.sessions.CreateSession(ctx, user.ID, input.Device, input.DeviceID, input.IPAddress, input.UserAgent)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		TokenResponse: *tokens,
		User:          dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Authenticate(ctx, input.Email, input.Password, input.IPAddress)
	if err != nil {
		return errorResponse(c, err)
	}

	_, tokens, err := h.sessions.CreateSession(ctx, user.ID, input.Device, input.DeviceID, input.IPAddress, input.UserAgent)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.AuthResponse{
		TokenResponse: *tokens,
		User:          dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) OAuthLogin(c *fiber.Ctx) error {
	var input dto.OAuthLoginInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if input.Provider == "" || input.IDToken == "" {
		return badRequest(c, "provider and idToken are required")
	}
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.verifier.Verify(ctx, input.Provider, input.IDToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_id_token"})
	}

	user, err := h.users.GetOrCreateOAuthUser(ctx, input.Provider, profile.Email, profile.Name)
	if err != nil {
		return errorResponse(c, err)
	}

	_, tokens, err := h.sessions.CreateSession(ctx, user.ID, input.Device, input.DeviceID, input.IPAddress, input.UserAgent)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.AuthResponse{
		TokenResponse: *tokens,
		User:          dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if input.RefreshToken == "" || input.SessionID == "" {
		return badRequest(c, "refreshToken and sessionId are required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tokens, err := h.sessions.VerifyAndRotateRefreshToken(ctx, input.SessionID, input.RefreshToken, input.DeviceID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if input.SessionID == "" {
		return badRequest(c, "sessionId is required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	revoked, err := h.sessions.RevokeSession(ctx, input.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": revoked})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)
	if user == nil {
		return unauthorized(c)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.sessions.RevokeAllUserSessions(ctx, user.ID); err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)
	if user == nil {
		return unauthorized(c)
	}

	return c.Status(fiber.StatusOK).JSON(dto.NewUserOutput(user))
}

func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)
	if user == nil {
		return unauthorized(c)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sessions, err := h.sessions.FindActiveSessionsByUserID(ctx, user.ID)
	if err != nil {
		return errorResponse(c, err)
	}

	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.NewSessionOutput(s))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"sessions": out})
}

func (h *AuthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// AuthenticatedUser returns the identity resolved by the auth middleware, or
// nil for anonymous requests.
func AuthenticatedUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(localUserKey).(*domain.User)
	return user
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), storeTimeout)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "validation_error",
		"message": message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func errorResponse(c *fiber.Ctx, err error) error {
	var verr *autherror.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation_error",
			"fields": verr.Fields,
		})
	}

	switch {
	case errors.Is(err, autherror.ErrEmailAlreadyRegistered):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_already_registered"})
	case errors.Is(err, autherror.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_credentials"})
	case errors.Is(err, autherror.ErrAccountLocked):
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{"error": "account_locked"})
	case errors.Is(err, autherror.ErrReuseDetected):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "token_reuse_detected"})
	case errors.Is(err, autherror.ErrInvalidRefreshToken), errors.Is(err, autherror.ErrDeviceMismatch):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_refresh_token"})
	case errors.Is(err, autherror.ErrSessionExpired), errors.Is(err, autherror.ErrSessionNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session_expired"})
	case errors.Is(err, autherror.ErrInvalidOrExpiredToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_token"})
	case errors.Is(err, autherror.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}
}
