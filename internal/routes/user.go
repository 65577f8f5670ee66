package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/pinpad/internal/identity"
)

// RegisterUserRoutes wires POST /register under r.
func RegisterUserRoutes(r fiber.Router, h *identity.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/register", rateLimiter, h.Register)
		return
	}
	r.Post("/register", h.Register)
}
