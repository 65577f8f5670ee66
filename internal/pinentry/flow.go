// Package pinentry implements the PIN setup step of onboarding: a bounded digit
// buffer and a single guarded registration submission.
package pinentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/congo-pay/pinpad/internal/credential"
	"github.com/congo-pay/pinpad/internal/logging"
	"github.com/congo-pay/pinpad/internal/navigation"
	"github.com/congo-pay/pinpad/internal/registration"
)

// DefaultLength is the PIN length used when Options.Length is zero.
const DefaultLength = 4

// Options configures a Flow.
type Options struct {
	// Length is both the input cap and the length required to submit.
	Length int
	// NextRoute is passed to the Navigator on success.
	NextRoute string
}

// Flow owns the digit buffer and submission state for one PIN entry screen.
// It is safe for concurrent use; the registration call runs without holding
// the lock so input keeps flowing while a request is pending.
type Flow struct {
	mu         sync.Mutex
	buf        *Buffer
	state      State
	err        *Error
	length     int
	next       string
	submitting bool

	store  credential.Store
	client registration.Client
	nav    navigation.Navigator
	logger *slog.Logger
}

// NewFlow wires a Flow to its collaborators.
func NewFlow(opts Options, store credential.Store, client registration.Client, nav navigation.Navigator, logger *slog.Logger) (*Flow, error) {
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if client == nil {
		return nil, fmt.Errorf("registration client is required")
	}
	if opts.Length == 0 {
		opts.Length = DefaultLength
	}
	if opts.Length < 0 {
		return nil, fmt.Errorf("PIN length must be positive, got %d", opts.Length)
	}
	if opts.NextRoute == "" {
		opts.NextRoute = navigation.ConfirmPassword
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if nav == nil {
		nav = navigation.NewLoggerNavigator(logger)
	}
	return &Flow{
		buf:    NewBuffer(opts.Length),
		length: opts.Length,
		next:   opts.NextRoute,
		store:  store,
		client: client,
		nav:    nav,
		logger: logger,
	}, nil
}

// Length is the configured PIN length.
func (f *Flow) Length() int { return f.length }

// AppendDigit adds d to the buffer. Non-digits and input past the PIN length
// are ignored; the return value reports whether the buffer changed.
func (f *Flow) AppendDigit(d rune) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Append(d)
}

// DeleteLast removes the last digit, if any.
func (f *Flow) DeleteLast() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.DeleteLast()
}

// State returns the current submission state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error currently shown, or nil.
func (f *Flow) Err() *Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit validates the buffer, reads the stored phone number and registers it
// with the PIN. It blocks for the duration of the request.
//
// Submit returns ErrSubmissionInFlight without side effects while another
// call is pending, ErrCompleted after a successful registration, a *Error on
// failure and nil once the navigator has been told to advance.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if f.state == Succeeded {
		f.mu.Unlock()
		return ErrCompleted
	}
	if f.buf.Len() != f.length {
		e := pinLengthError(f.length)
		f.state, f.err = Failed, e
		f.mu.Unlock()
		return e
	}
	// Reserve the attempt before any I/O so a second Submit is rejected. The
	// visible state stays as it was until the phone number has been read.
	pin := f.buf.Digits()
	f.submitting = true
	f.mu.Unlock()

	phone, err := f.store.PhoneNumber(ctx)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			f.logger.Warn("read stored phone number", slog.Any("error", err))
		}
		return f.fail(phoneRequiredError(err))
	}

	f.mu.Lock()
	f.state, f.err = InFlight, nil
	f.mu.Unlock()

	f.logger.Info("registration submitted", slog.String("phone", logging.MaskPhone(phone)))
	res, err := f.client.Register(ctx, registration.Request{PhoneNumber: phone, PIN: pin})
	if err != nil {
		return f.fail(transportError(err))
	}
	if !res.OK {
		return f.fail(serviceError(res.Message, res.StatusCode))
	}

	f.mu.Lock()
	f.state, f.err, f.submitting = Succeeded, nil, false
	f.mu.Unlock()

	f.logger.Info("registration succeeded",
		slog.String("phone", logging.MaskPhone(phone)),
		slog.String("request_id", res.RequestID),
	)
	if err := f.nav.Advance(ctx, f.next); err != nil {
		f.logger.Error("advance after registration", slog.String("route", f.next), slog.Any("error", err))
	}
	return nil
}

func (f *Flow) fail(e *Error) error {
	f.mu.Lock()
	f.state, f.err, f.submitting = Failed, e, false
	f.mu.Unlock()
	f.logger.Warn("registration failed", slog.String("kind", e.Kind.String()), slog.Any("error", e))
	return e
}
