// Package registration talks to the backend registration endpoint.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RegisterPath is the endpoint receiving phone number and PIN.
	RegisterPath = "/user/register"

	requestIDHeader      = "X-Request-ID"
	idempotencyKeyHeader = "Idempotency-Key"
)

// ErrMalformedResponse is wrapped when the service answers with a body that is
// not JSON.
var ErrMalformedResponse = errors.New("malformed registration response")

// Request is the registration payload.
type Request struct {
	PhoneNumber string `json:"phoneNumber"`
	PIN         string `json:"pin"`
}

// Result is what the service answered. A non-nil error from Register means no
// usable Result was obtained.
type Result struct {
	StatusCode int
	OK         bool
	Message    string
	RequestID  string
}

// Client submits registrations.
type Client interface {
	Register(ctx context.Context, req Request) (Result, error)
}

type responseBody struct {
	OK      *bool  `json:"ok"`
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// HTTPClient posts registrations as JSON using Fiber's HTTP client.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	client  *fiber.Client
	logger  *slog.Logger
}

// NewHTTPClient builds a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, userAgent string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		timeout: timeout,
		client: &fiber.Client{
			UserAgent:   userAgent,
			JSONEncoder: sonic.Marshal,
			JSONDecoder: sonic.Unmarshal,
		},
		logger: logger,
	}
}

// Register sends one POST to RegisterPath. Each call carries fresh request ID
// and idempotency key headers.
func (c *HTTPClient) Register(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Result{}, context.DeadlineExceeded
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	requestID := uuid.NewString()
	agent := c.client.Post(c.baseURL + RegisterPath)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Set(requestIDHeader, requestID)
	agent.Set(idempotencyKeyHeader, uuid.NewString())
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	agent.JSON(req)

	start := time.Now()
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		c.log().Warn("registration request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return Result{RequestID: requestID}, err
	}

	res := Result{StatusCode: status, RequestID: requestID}
	ok := status >= fiber.StatusOK && status < fiber.StatusMultipleChoices

	if len(body) > 0 {
		var decoded responseBody
		if err := sonic.Unmarshal(body, &decoded); err != nil {
			return res, fmt.Errorf("%w (status %d): %v", ErrMalformedResponse, status, err)
		}
		if decoded.OK != nil && !*decoded.OK {
			ok = false
		}
		if markedError(decoded.Error) {
			ok = false
		}
		res.Message = decoded.Message
		if res.Message == "" {
			if s, isString := decoded.Error.(string); isString {
				res.Message = s
			}
		}
	}
	res.OK = ok

	c.log().Info("registration response",
		slog.String("request_id", requestID),
		slog.Int("status", status),
		slog.Bool("ok", ok),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (c *HTTPClient) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func markedError(v any) bool {
	switch e := v.(type) {
	case nil:
		return false
	case bool:
		return e
	case string:
		return e != ""
	default:
		return true
	}
}
