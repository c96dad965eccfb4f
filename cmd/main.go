package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mkucukkoc/google-auth-sub002/config"
	"github.com/mkucukkoc/google-auth-sub002/db"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/handler"
	repo "github.com/mkucukkoc/google-auth-sub002/internal/auth/repository/postgres"
	"github.com/mkucukkoc/google-auth-sub002/internal/auth/service"
	"github.com/mkucukkoc/google-auth-sub002/internal/event"
	"github.com/mkucukkoc/google-auth-sub002/internal/oauth"
	"github.com/mkucukkoc/google-auth-sub002/internal/ratelimit"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if err := db.Migrate(cfg.DBURL); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer dbPool.Close()

	userRepo := repo.NewUserRepository(dbPool)
	sessionRepo := repo.NewSessionRepository(dbPool)

	var events event.Publisher = event.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		events = event.NewAMQPPublisher(cfg.RabbitMQURL)
	}

	hasher := service.NewHasher()
	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.TokenIssuer, cfg.TokenAudience, cfg.AccessExpiryMin)
	userService := service.NewUserService(userRepo, hasher, events, cfg)
	sessionService := service.NewSessionService(sessionRepo, tokenService, hasher, events, cfg)

	authHandler := handler.NewAuthHandler(userService, sessionService, oauth.NewGoogleVerifier())
	authMiddleware := handler.NewAuthMiddleware(tokenService, userService, sessionService)

	limiter := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimitEnabled,
		Capacity: cfg.RateLimitCapacity,
		RefillMs: cfg.RateLimitRefillMs,
	}, config.NewRedisClient(cfg))

	go cleanupLoop(ctx, sessionService)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, authMiddleware, limiter)

	log.Fatal(app.Listen(":" + cfg.Port))
}

// cleanupLoop bulk-revokes expired sessions once an hour. Expiry is always
// re-checked live, so this is housekeeping only.
func cleanupLoop(ctx context.Context, sessions *service.SessionService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		n, err := sessions.CleanupExpiredSessions(ctx)
		if err != nil {
			log.Printf("warn: session cleanup failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("session cleanup: revoked %d expired sessions", n)
		}
	}
}
