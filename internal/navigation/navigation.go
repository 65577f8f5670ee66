package navigation

import (
	"context"
	"log/slog"
	"sync"
)

const (
	// SetupPassword is the PIN entry screen.
	SetupPassword = "/pages/password-pages/setup-password"
	// ConfirmPassword is the screen shown after a successful registration.
	ConfirmPassword = "/pages/password-pages/confirm-password"
)

// Navigator moves the caller to another screen. The flow never routes itself.
type Navigator interface {
	Advance(ctx context.Context, route string) error
}

// LoggerNavigator records navigation in the structured log and does nothing else.
type LoggerNavigator struct {
	logger *slog.Logger
}

// NewLoggerNavigator constructs a logging navigator.
func NewLoggerNavigator(logger *slog.Logger) *LoggerNavigator {
	return &LoggerNavigator{logger: logger}
}

// Advance writes the route to the logger.
func (n *LoggerNavigator) Advance(_ context.Context, route string) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("navigation", slog.String("route", route))
	return nil
}

// ChannelNavigator closes Done the first time Advance is called.
type ChannelNavigator struct {
	once  sync.Once
	mu    sync.Mutex
	done  chan struct{}
	route string
	calls int
}

// NewChannelNavigator constructs a navigator whose Done channel is open.
func NewChannelNavigator() *ChannelNavigator {
	return &ChannelNavigator{done: make(chan struct{})}
}

// Advance records route and closes Done. Later calls are counted only.
func (n *ChannelNavigator) Advance(_ context.Context, route string) error {
	n.mu.Lock()
	n.calls++
	if n.calls == 1 {
		n.route = route
	}
	n.mu.Unlock()
	n.once.Do(func() { close(n.done) })
	return nil
}

// Done is closed once navigation has happened.
func (n *ChannelNavigator) Done() <-chan struct{} {
	return n.done
}

// Route returns the first route advanced to, or "".
func (n *ChannelNavigator) Route() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

// Calls reports how many times Advance was invoked.
func (n *ChannelNavigator) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
