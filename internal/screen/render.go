package screen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/congo-pay/pinpad/internal/pinentry"
)

const (
	title    = "Setup your password"
	subtitle = "You will use this to log into your account"
	help     = "keys: 0-9 digit | d/backspace delete | enter/c continue | q quit"

	dotFilled = "●"
	dotEmpty  = "○"

	clearScreen = "\x1b[H\x1b[2J"
)

var keypad = [][]string{
	{"1", "2", "3"},
	{"4", "5", "6"},
	{"7", "8", "9"},
	{" ", "0", "Delete"},
}

// Renderer draws a pinentry.View as plain text.
type Renderer struct {
	out   io.Writer
	clear bool
}

// NewRenderer writes frames to out. With clear set every frame starts by
// clearing an ANSI terminal.
func NewRenderer(out io.Writer, clear bool) *Renderer {
	return &Renderer{out: out, clear: clear}
}

// Render writes one frame.
func (r *Renderer) Render(v pinentry.View) error {
	_, err := io.WriteString(r.out, Frame(v, r.clear))
	return err
}

// Frame formats v. Exposed for tests and for callers embedding the pad.
func Frame(v pinentry.View, clear bool) string {
	var b strings.Builder
	if clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(title + "\n")
	b.WriteString(subtitle + "\n\n")

	dots := make([]string, len(v.Dots))
	for i, on := range v.Dots {
		if on {
			dots[i] = dotFilled
		} else {
			dots[i] = dotEmpty
		}
	}
	b.WriteString("  " + strings.Join(dots, " ") + "\n\n")

	for _, row := range keypad {
		b.WriteString(" ")
		for _, key := range row {
			fmt.Fprintf(&b, " %-3s", key)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.ContinueVisible {
		if v.ContinueEnabled {
			fmt.Fprintf(&b, "  [ %s ]\n", v.ContinueLabel)
		} else {
			fmt.Fprintf(&b, "  ( %s )\n", v.ContinueLabel)
		}
	}
	if v.Error != "" {
		fmt.Fprintf(&b, "  ! %s\n", v.Error)
	}
	if v.Status != "" {
		fmt.Fprintf(&b, "  %s\n", v.Status)
	}
	b.WriteString(help + "\n")
	return b.String()
}

type crlfWriter struct{ w io.Writer }

// CRLF translates "\n" to "\r\n" for a terminal in raw mode, where output
// post-processing is off.
func CRLF(w io.Writer) io.Writer { return crlfWriter{w: w} }

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
