package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkucukkoc/google-auth-sub002/config"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/dto"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/repository/memory"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/service"
	"github.com/mkucukkoc/google-auth-sub002/internal/event"
	"github.com/mkucukkoc/google-auth-sub002/internal/mocks"
	"github.com/mkucukkoc/google-auth-sub002/pkg/constant"
)

type testApp struct {
	app      *fiber.App
	verifier *mocks.MockProviderVerifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cfg := &config.Config{
		AccessExpiryMin:  15,
		RefreshTTLDays:   30,
		TokenIssuer:      constant.DefaultTokenIssuer,
		TokenAudience:    constant.DefaultTokenAudience,
		LoginMaxAttempts: 5,
		LockoutMinutes:   30,
		RefreshGraceMin:  5,
	}

	hasher := service.NewHasher()
	tokens := service.NewTokenService("handler-test-secret", cfg.TokenIssuer, cfg.TokenAudience, cfg.AccessExpiryMin)
	users := service.NewUserService(memory.NewUserRepository(), hasher, event.NopPublisher{}, cfg)
	sessions := service.NewSessionService(memory.NewSessionRepository(), tokens, hasher, event.NopPublisher{}, cfg)
	verifier := mocks.NewMockProviderVerifier(ctrl)

	app := fiber.New()
	RegisterRoutes(app, NewAuthHandler(users, sessions, verifier), NewAuthMiddleware(tokens, users, sessions), nil)

	return &testApp{app: app, verifier: verifier}
}

func (ta *testApp) request(t *testing.T, method, path, bearer string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	// No deadline: the password hash profile is deliberately slow.
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	parsed := map[string]json.RawMessage{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func (ta *testApp) register(t *testing.T, email, password string) dto.AuthResponse {
	t.Helper()

	resp, _ := ta.request(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email":    email,
		"password": password,
		"name":     "Test User",
		"deviceId": "device-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return ta.login(t, email, password)
}

func (ta *testApp) login(t *testing.T, email, password string) dto.AuthResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(mustJSON(t, fiber.Map{
		"email":    email,
		"password": password,
		"deviceId": "device-1",
	})))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return payload
}

func errorCode(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var code string
	require.NoError(t, json.Unmarshal(body["error"], &code))
	return code
}

func TestRegisterAndLogin(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.request(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email":    "User@Example.com",
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "accessToken")
	assert.Contains(t, body, "refreshToken")
	assert.Contains(t, body, "sessionId")

	var user dto.UserOutput
	require.NoError(t, json.Unmarshal(body["user"], &user))
	assert.Equal(t, "user@example.com", user.Email)

	out := ta.login(t, "user@example.com", "password123")
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ta := newTestApp(t)
	ta.register(t, "dup@example.com", "password123")

	resp, body := ta.request(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email":    "Dup@Example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email_already_registered", errorCode(t, body))
}

func TestRegister_ValidationErrors(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.request(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", errorCode(t, body))

	var fields map[string]string
	require.NoError(t, json.Unmarshal(body["fields"], &fields))
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestLogin_WrongPassword(t *testing.T) {
	ta := newTestApp(t)
	ta.register(t, "user@example.com", "password123")

	resp, body := ta.request(t, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", errorCode(t, body))
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	ta := newTestApp(t)
	ta.register(t, "user@example.com", "password123")

	for i := 0; i < 5; i++ {
		resp, body := ta.request(t, http.MethodPost, "/auth/login", "", fiber.Map{
			"email":    "user@example.com",
			"password": fmt.Sprintf("wrong-%d", i),
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid_credentials", errorCode(t, body))
	}

	// Sixth attempt hits the lock, correct password or not.
	resp, body := ta.request(t, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "user@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	assert.Equal(t, "account_locked", errorCode(t, body))
}

func TestRefreshFlow(t *testing.T) {
	ta := newTestApp(t)
	out := ta.register(t, "user@example.com", "password123")

	resp, body := ta.request(t, http.MethodPost, "/auth/refresh", "", fiber.Map{
		"refreshToken": out.RefreshToken,
		"sessionId":    out.SessionID,
		"deviceId":     "device-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rotated dto.TokenResponse
	require.NoError(t, json.Unmarshal(body["sessionId"], &rotated.SessionID))
	require.NoError(t, json.Unmarshal(body["refreshToken"], &rotated.RefreshToken))
	assert.Equal(t, out.SessionID, rotated.SessionID)
	assert.NotEqual(t, out.RefreshToken, rotated.RefreshToken)

	// The superseded token is burned.
	resp, body = ta.request(t, http.MethodPost, "/auth/refresh", "", fiber.Map{
		"refreshToken": out.RefreshToken,
		"sessionId":    out.SessionID,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token_reuse_detected", errorCode(t, body))

	// Reuse detection revoked everything, including the rotated token.
	resp, body = ta.request(t, http.MethodPost, "/auth/refresh", "", fiber.Map{
		"refreshToken": rotated.RefreshToken,
		"sessionId":    rotated.SessionID,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_refresh_token", errorCode(t, body))
}

func TestRefresh_DeviceMismatch(t *testing.T) {
	ta := newTestApp(t)
	out := ta.register(t, "user@example.com", "password123")

	resp, body := ta.request(t, http.MethodPost, "/auth/refresh", "", fiber.Map{
		"refreshToken": out.RefreshToken,
		"sessionId":    out.SessionID,
		"deviceId":     "some-other-device",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_refresh_token", errorCode(t, body))
}

func TestRefresh_MissingFields(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.request(t, http.MethodPost, "/auth/refresh", "", fiber.Map{
		"refreshToken": "something",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", errorCode(t, body))
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t)
	out := ta.register(t, "user@example.com", "password123")

	resp, body := ta.request(t, http.MethodPost, "/auth/logout", "", fiber.Map{
		"sessionId": out.SessionID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var success bool
	require.NoError(t, json.Unmarshal(body["success"], &success))
	assert.True(t, success)

	// Second logout is a no-op.
	resp, body = ta.request(t, http.MethodPost, "/auth/logout", "", fiber.Map{
		"sessionId": out.SessionID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body["success"], &success))
	assert.False(t, success)

	// The revoked session cannot refresh.
	resp, body = ta.request(t, http.MethodPost, "/auth/refresh", "", fiber.Map{
		"refreshToken": out.RefreshToken,
		"sessionId":    out.SessionID,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_refresh_token", errorCode(t, body))
}

func TestMe(t *testing.T) {
	ta := newTestApp(t)
	out := ta.register(t, "user@example.com", "password123")

	resp, body := ta.request(t, http.MethodGet, "/auth/me", out.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var email string
	require.NoError(t, json.Unmarshal(body["email"], &email))
	assert.Equal(t, "user@example.com", email)
}

func TestMe_RejectsAnonymousAndBadTokens(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.request(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", errorCode(t, body))

	resp, body = ta.request(t, http.MethodGet, "/auth/me", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", errorCode(t, body))
}

func TestMe_RejectsRevokedSession(t *testing.T) {
	ta := newTestApp(t)
	out := ta.register(t, "user@example.com", "password123")

	resp, _ := ta.request(t, http.MethodPost, "/auth/logout", "", fiber.Map{"sessionId": out.SessionID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The access token is still signed and unexpired, but its session is dead.
	resp, body := ta.request(t, http.MethodGet, "/auth/me", out.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "session_expired", errorCode(t, body))
}

func TestSessionsAndLogoutAll(t *testing.T) {
	ta := newTestApp(t)
	ta.register(t, "user@example.com", "password123")
	out := ta.login(t, "user@example.com", "password123")

	resp, body := ta.request(t, http.MethodGet, "/auth/sessions", out.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessions []dto.SessionOutput
	require.NoError(t, json.Unmarshal(body["sessions"], &sessions))
	assert.Len(t, sessions, 2)

	resp, body = ta.request(t, http.MethodPost, "/auth/logout-all", out.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var success bool
	require.NoError(t, json.Unmarshal(body["success"], &success))
	assert.True(t, success)

	// The token's own session died with the rest.
	resp, body = ta.request(t, http.MethodGet, "/auth/sessions", out.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "session_expired", errorCode(t, body))
}

func TestOAuthLogin(t *testing.T) {
	ta := newTestApp(t)

	ta.verifier.EXPECT().Verify(gomock.Any(), constant.ProviderGoogle, "valid-id-token").
		Return(&service.ProviderProfile{Email: "oauth@example.com", Name: "OAuth User"}, nil).Times(2)

	resp, body := ta.request(t, http.MethodPost, "/auth/oauth/login", "", fiber.Map{
		"provider": constant.ProviderGoogle,
		"idToken":  "valid-id-token",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "accessToken")

	var user dto.UserOutput
	require.NoError(t, json.Unmarshal(body["user"], &user))
	assert.Equal(t, "oauth@example.com", user.Email)
	assert.True(t, user.IsEmailVerified)

	// Second login resolves to the same user instead of creating another.
	resp, body = ta.request(t, http.MethodPost, "/auth/oauth/login", "", fiber.Map{
		"provider": constant.ProviderGoogle,
		"idToken":  "valid-id-token",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var again dto.UserOutput
	require.NoError(t, json.Unmarshal(body["user"], &again))
	assert.Equal(t, user.ID, again.ID)
}

func TestOAuthLogin_InvalidToken(t *testing.T) {
	ta := newTestApp(t)

	ta.verifier.EXPECT().Verify(gomock.Any(), constant.ProviderGoogle, "bad-token").
		Return(nil, fmt.Errorf("token rejected"))

	resp, body := ta.request(t, http.MethodPost, "/auth/oauth/login", "", fiber.Map{
		"provider": constant.ProviderGoogle,
		"idToken":  "bad-token",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_id_token", errorCode(t, body))
}

func TestOAuthLogin_MissingFields(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.request(t, http.MethodPost, "/auth/oauth/login", "", fiber.Map{
		"provider": constant.ProviderGoogle,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", errorCode(t, body))
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status string
	require.NoError(t, json.Unmarshal(body["status"], &status))
	assert.Equal(t, "ok", status)
}
