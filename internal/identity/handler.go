package identity

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/congo-pay/pinpad/internal/logging"
)

// Handler serves the stub registration endpoint.
type Handler struct {
	repo   Repository
	logger *slog.Logger
}

// NewHandler constructs the registration handler.
func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{repo: repo, logger: logger}
}

type registerResponse struct {
	OK          bool   `json:"ok"`
	ID          string `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
}

// Register accepts a phone number and PIN. Only presence is checked; the PIN
// is discarded.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.PhoneNumber == "" {
		return fiber.NewError(http.StatusBadRequest, "Phone number is required")
	}
	if req.PIN == "" {
		return fiber.NewError(http.StatusBadRequest, "PIN is required")
	}

	reg := Registration{
		ID:           uuid.NewString(),
		PhoneNumber:  req.PhoneNumber,
		RegisteredAt: time.Now().UTC(),
	}
	if err := h.repo.Create(c.UserContext(), reg); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return fiber.NewError(http.StatusConflict, "Phone number already registered")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	h.logger.Info("user.register completed",
		slog.String("id", reg.ID),
		slog.String("phone", logging.MaskPhone(reg.PhoneNumber)),
		slog.Int("status", http.StatusCreated),
	)
	return c.Status(http.StatusCreated).JSON(registerResponse{OK: true, ID: reg.ID, PhoneNumber: reg.PhoneNumber})
}
