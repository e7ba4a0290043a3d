// Package webapi provides the HTTP surface of the ledger.
// It is organized into sub-packages per resource:
// - customer: customer registration and account opening
// - account: account reads, deactivation and statements
// - transfer: fund transfers
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/ledger/pkg/app"
	accountweb "github.com/amirasaad/ledger/webapi/account"
	"github.com/amirasaad/ledger/webapi/common"
	customerweb "github.com/amirasaad/ledger/webapi/customer"
	transferweb "github.com/amirasaad/ledger/webapi/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "ledger",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	maxRequests, window := 100, time.Minute
	if a.Config != nil && a.Config.RateLimit != nil {
		rl := a.Config.RateLimit
		if rl.MaxRequests > 0 {
			maxRequests = rl.MaxRequests
		}
		if rl.Window > 0 {
			window = rl.Window
		}
	}
	fiberApp.Use(limiter.New(limiter.Config{
		Max:          maxRequests,
		Expiration:   window,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Ledger API is running! 🚀")
	})

	customerweb.Routes(fiberApp, a.AccountService)
	accountweb.Routes(fiberApp, a.AccountService)
	transferweb.Routes(fiberApp, a.TransferService)
	return fiberApp
}

// clientKey identifies the caller for rate limiting: the first X-Forwarded-For
// hop, then X-Real-IP, then the peer address.
func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
