// Package webapi provides HTTP handlers and API endpoints for the PIX ledger
// and virtual card backend. It is organized into sub-packages per area:
// - auth: registration, login and the current user
// - kyc: document submission and status
// - pix: account, QR payment requests, transfers and history
// - card: virtual card lifecycle and limits
// - admin: KYC review, deposits and card network simulation
package webapi

import (
	"errors"
	"strings"
	"time"

	_ "github.com/amirasaad/fintechflow/docs" // swagger spec
	"github.com/amirasaad/fintechflow/pkg/app"
	adminweb "github.com/amirasaad/fintechflow/webapi/admin"
	authweb "github.com/amirasaad/fintechflow/webapi/auth"
	cardweb "github.com/amirasaad/fintechflow/webapi/card"
	"github.com/amirasaad/fintechflow/webapi/common"
	kycweb "github.com/amirasaad/fintechflow/webapi/kyc"
	pixweb "github.com/amirasaad/fintechflow/webapi/pix"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		AppName: "fintechflow",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
	}))

	// Behind a proxy the first X-Forwarded-For hop is the client.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				"Rate limit exceeded",
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	if cfg.Env != "test" {
		fiberApp.Use(logger.New())
	}

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("FintechFlow API is running! 🚀")
	})

	api := fiberApp.Group("/api")
	api.Get("/health", Health())

	authweb.Routes(api, a.AuthService, a.UserService, cfg)
	kycweb.Routes(api, a.KYCService, a.AuthService, cfg)
	pixweb.Routes(api, a.PixService, a.AuthService, a.Idempotency, cfg)
	cardweb.Routes(api, a.CardService, a.AuthService, cfg)
	adminweb.Routes(api, adminweb.Services{
		Auth: a.AuthService,
		KYC:  a.KYCService,
		Pix:  a.PixService,
		Card: a.CardService,
	}, a.Idempotency, cfg)
	return fiberApp
}

// Health reports liveness.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
	}
}
