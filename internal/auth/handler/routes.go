package handler

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the auth surface. limiter guards the credential
// endpoints; pass nil to disable rate limiting.
func RegisterRoutes(app *fiber.App, h *AuthHandler, m *AuthMiddleware, limiter fiber.Handler) {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	auth := app.Group("/auth")
	auth.Post("/register", limiter, h.Register)
	auth.Post("/login", limiter, h.Login)
	auth.Post("/oauth/login", limiter, h.OAuthLogin)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", h.Logout)

	auth.Post("/logout-all", m.RequireAuth(), h.LogoutAll)
	auth.Get("/me", m.RequireAuth(), h.Me)
	auth.Get("/sessions", m.RequireAuth(), h.Sessions)

	app.Get("/health", h.Health)
}
