package webapi

import (
	"github.com/amirasaad/banksim/pkg/config"
	accountsvc "github.com/amirasaad/banksim/pkg/service/account"
	"github.com/amirasaad/banksim/webapi/account"
	"github.com/amirasaad/banksim/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the HTTP application over the account service.
func NewApp(accountSvc *accountsvc.Service, cfg *config.Server) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "banksim",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ErrorResponseJSON(c, common.ErrorToStatusCode(err), "Request failed", err.Error())
		},
	})

	app.Use(recover.New())
	if cfg != nil && cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
			},
		}))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("App is working! 🚀")
	})
	account.Routes(app, accountSvc)

	return app
}
