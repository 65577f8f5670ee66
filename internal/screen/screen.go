// Package screen runs the PIN pad in a terminal.
package screen

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/congo-pay/pinpad/internal/logging"
	"github.com/congo-pay/pinpad/internal/pinentry"
)

var (
	// ErrQuit is returned when the user leaves the screen without registering.
	ErrQuit = errors.New("pin entry abandoned")
	// ErrInputClosed is returned when input ends before registration succeeded.
	ErrInputClosed = errors.New("input closed before registration completed")
)

type action int

const (
	actionNone action = iota
	actionDigit
	actionDelete
	actionSubmit
	actionQuit
)

// classify maps a key to an action. Enter arrives as '\r' from a raw
// terminal; a bare '\n' only ends a line of cooked input and is ignored.
func classify(r rune) action {
	switch {
	case r >= '0' && r <= '9':
		return actionDigit
	case r == 'd' || r == 'D' || r == 'x' || r == 'X' || r == '\b' || r == 0x7f:
		return actionDelete
	case r == 'c' || r == 'C' || r == '\r':
		return actionSubmit
	case r == 'q' || r == 'Q' || r == 0x03:
		return actionQuit
	default:
		return actionNone
	}
}

// Screen binds a flow to terminal input and output.
type Screen struct {
	flow     *pinentry.Flow
	renderer *Renderer
	advanced <-chan struct{}
	logger   *slog.Logger
}

// New builds a screen. advanced must be closed by the flow's navigator when
// registration succeeds.
func New(flow *pinentry.Flow, renderer *Renderer, advanced <-chan struct{}, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Screen{flow: flow, renderer: renderer, advanced: advanced, logger: logger}
}

// Run renders the pad and processes keys from in until registration succeeds
// (nil), the user quits (ErrQuit), input ends (ErrInputClosed) or ctx is
// cancelled. A pending registration is always waited for before returning.
func (s *Screen) Run(ctx context.Context, in io.Reader) error {
	keys := make(chan rune)
	stop := make(chan struct{})
	defer close(stop)
	go readKeys(in, keys, stop)

	// One background submission at a time; the flow enforces the same rule.
	var submissions errgroup.Group
	submissions.SetLimit(1)
	finished := make(chan struct{}, 1)

	if err := s.render(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = submissions.Wait()
			return ctx.Err()

		case <-s.advanced:
			_ = submissions.Wait()
			return s.render()

		case <-finished:
			if err := s.render(); err != nil {
				return err
			}

		case r, ok := <-keys:
			if !ok {
				_ = submissions.Wait()
				if err := s.render(); err != nil {
					return err
				}
				select {
				case <-s.advanced:
					return nil
				default:
					return ErrInputClosed
				}
			}
			switch classify(r) {
			case actionDigit:
				if !s.flow.AppendDigit(r) {
					continue
				}
			case actionDelete:
				if !s.flow.DeleteLast() {
					continue
				}
			case actionSubmit:
				if !s.submit(ctx, &submissions, finished) {
					continue
				}
			case actionQuit:
				_ = submissions.Wait()
				return ErrQuit
			default:
				continue
			}
			if err := s.render(); err != nil {
				return err
			}
		}
	}
}

func (s *Screen) submit(ctx context.Context, submissions *errgroup.Group, finished chan<- struct{}) bool {
	// A registration in flight is not abandoned when the caller gives up.
	submitCtx := context.WithoutCancel(ctx)
	return submissions.TryGo(func() error {
		err := s.flow.Submit(submitCtx)
		if errors.Is(err, pinentry.ErrSubmissionInFlight) || errors.Is(err, pinentry.ErrCompleted) {
			s.logger.Debug("submit ignored", slog.Any("reason", err))
		}
		select {
		case finished <- struct{}{}:
		default:
		}
		return nil
	})
}

func (s *Screen) render() error {
	return s.renderer.Render(s.flow.View())
}

func readKeys(in io.Reader, keys chan<- rune, stop <-chan struct{}) {
	defer close(keys)
	br := bufio.NewReader(in)
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			return
		}
		select {
		case keys <- r:
		case <-stop:
			return
		}
	}
}
