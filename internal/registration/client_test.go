package registration

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/pinpad/internal/logging"
)

type captured struct {
	mu           sync.Mutex
	bodies       []Request
	requestIDs   []string
	idempotency  []string
	contentTypes []string
	userAgents   []string
}

func (c *captured) record(ctx *fiber.Ctx) error {
	var req Request
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies = append(c.bodies, req)
	c.requestIDs = append(c.requestIDs, ctx.Get(requestIDHeader))
	c.idempotency = append(c.idempotency, ctx.Get(idempotencyKeyHeader))
	c.contentTypes = append(c.contentTypes, ctx.Get(fiber.HeaderContentType))
	c.userAgents = append(c.userAgents, ctx.Get(fiber.HeaderUserAgent))
	return nil
}

// serve starts app on a loopback listener and returns its base URL.
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}

func newClient(baseURL string) *HTTPClient {
	return NewHTTPClient(baseURL, 2*time.Second, "pinpad-test", logging.Discard())
}

func TestRegisterSuccess(t *testing.T) {
	rec := &captured{}
	app := newApp()
	app.Post(RegisterPath, func(c *fiber.Ctx) error {
		if err := rec.record(c); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
	})
	client := newClient(serve(t, app))

	res, err := client.Register(context.Background(), Request{PhoneNumber: "+15551234567", PIN: "1234"})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	require.Empty(t, res.Message)

	require.Equal(t, []Request{{PhoneNumber: "+15551234567", PIN: "1234"}}, rec.bodies)
	require.Equal(t, res.RequestID, rec.requestIDs[0])
	require.NotEmpty(t, rec.idempotency[0])
	require.Contains(t, rec.contentTypes[0], fiber.MIMEApplicationJSON)
	require.Equal(t, "pinpad-test", rec.userAgents[0])
}

func TestRegisterFreshKeysPerAttempt(t *testing.T) {
	rec := &captured{}
	app := newApp()
	app.Post(RegisterPath, func(c *fiber.Ctx) error {
		if err := rec.record(c); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	client := newClient(serve(t, app))

	for i := 0; i < 2; i++ {
		res, err := client.Register(context.Background(), Request{PhoneNumber: "+1", PIN: "1234"})
		require.NoError(t, err)
		require.True(t, res.OK, "empty 2xx body is success")
	}
	require.NotEqual(t, rec.idempotency[0], rec.idempotency[1])
	require.NotEqual(t, rec.requestIDs[0], rec.requestIDs[1])
}

func TestRegisterFailureResponses(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantOK  bool
		wantMsg string
	}{
		{"conflict with message", fiber.StatusConflict, `{"message":"Phone number already registered"}`, false, "Phone number already registered"},
		{"server error without message", fiber.StatusInternalServerError, `{}`, false, ""},
		{"ok status marked failed", fiber.StatusOK, `{"ok":false,"message":"X"}`, false, "X"},
		{"ok status with error string", fiber.StatusOK, `{"error":"PIN too weak"}`, false, "PIN too weak"},
		{"ok status with body", fiber.StatusOK, `{"ok":true,"id":"u-1"}`, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp()
			app.Post(RegisterPath, func(c *fiber.Ctx) error {
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				return c.Status(tc.status).SendString(tc.body)
			})
			client := newClient(serve(t, app))

			res, err := client.Register(context.Background(), Request{PhoneNumber: "+1", PIN: "1234"})
			require.NoError(t, err)
			require.Equal(t, tc.status, res.StatusCode)
			require.Equal(t, tc.wantOK, res.OK)
			require.Equal(t, tc.wantMsg, res.Message)
		})
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	app := newApp()
	app.Post(RegisterPath, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadGateway).SendString("<html>bad gateway</html>")
	})
	client := newClient(serve(t, app))

	res, err := client.Register(context.Background(), Request{PhoneNumber: "+1", PIN: "1234"})
	require.ErrorIs(t, err, ErrMalformedResponse)
	require.Equal(t, fiber.StatusBadGateway, res.StatusCode)
}

func TestRegisterTransportFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := newClient("http://" + addr)
	_, err = client.Register(context.Background(), Request{PhoneNumber: "+1", PIN: "1234"})
	require.Error(t, err)
	require.NotEmpty(t, err.Error())
}

func TestRegisterCancelledContext(t *testing.T) {
	client := newClient("http://127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Register(ctx, Request{PhoneNumber: "+1", PIN: "1234"})
	require.ErrorIs(t, err, context.Canceled)
}

type expiredContext struct{ context.Context }

func (expiredContext) Deadline() (time.Time, bool) { return time.Now().Add(-time.Second), true }

func TestRegisterDeadlinePassedBeforeSend(t *testing.T) {
	app := newApp()
	var hits int
	app.Post(RegisterPath, func(c *fiber.Ctx) error {
		hits++
		return c.SendStatus(fiber.StatusCreated)
	})
	client := newClient(serve(t, app))

	_, err := client.Register(expiredContext{context.Background()}, Request{PhoneNumber: "+1", PIN: "1234"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Zero(t, hits)
}

func TestRegisterTimeout(t *testing.T) {
	release := make(chan struct{})
	app := newApp()
	app.Post(RegisterPath, func(c *fiber.Ctx) error {
		<-release
		return c.SendStatus(fiber.StatusCreated)
	})
	baseURL := serve(t, app)
	t.Cleanup(func() { close(release) })

	client := NewHTTPClient(baseURL, 100*time.Millisecond, "", logging.Discard())
	_, err := client.Register(context.Background(), Request{PhoneNumber: "+1", PIN: "1234"})
	require.Error(t, err)
}
