package pinentry

import (
	"errors"
	"fmt"
)

const (
	// MsgPhoneRequired is shown when no phone number was stored by the previous step.
	MsgPhoneRequired = "Phone number is required"
	// MsgRegistrationFailed is shown when the service rejects without a message.
	MsgRegistrationFailed = "Registration failed"
	// MsgSomethingWentWrong is shown when the request failed without a usable message.
	MsgSomethingWentWrong = "Something went wrong"
)

var (
	// ErrSubmissionInFlight is returned by Submit while a registration request is pending.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrCompleted is returned by Submit after a successful registration.
	ErrCompleted = errors.New("registration already completed")

	// ErrValidation matches local validation failures via errors.Is.
	ErrValidation = errors.New("validation error")
	// ErrService matches failures reported by the registration service.
	ErrService = errors.New("service error")
	// ErrTransport matches requests that produced no usable response.
	ErrTransport = errors.New("transport error")
)

// Kind classifies a submission failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindService
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindService:
		return "service"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindService:
		return ErrService
	case KindTransport:
		return ErrTransport
	default:
		return nil
	}
}

// Error is the failure of one submission attempt. Detail is what the user sees
// when present; Message falls back to a generic text per kind.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message())
}

// Message is the text shown to the user.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case KindService:
		return MsgRegistrationFailed
	default:
		return MsgSomethingWentWrong
	}
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func (e *Error) Unwrap() error { return e.Err }

func pinLengthError(n int) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf("PIN must be exactly %d digits", n)}
}

func phoneRequiredError(cause error) *Error {
	return &Error{Kind: KindValidation, Detail: MsgPhoneRequired, Err: cause}
}

func serviceError(message string, status int) *Error {
	return &Error{Kind: KindService, Detail: message, Err: fmt.Errorf("registration rejected with status %d", status)}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Detail: err.Error(), Err: err}
}
