package pinentry

const (
	LabelContinue = "Continue"
	LabelLoading  = "Loading..."
	StatusPending = "Registering..."
)

// View is the presentation snapshot of a Flow.
type View struct {
	Dots            []bool
	ContinueVisible bool
	ContinueEnabled bool
	ContinueLabel   string
	Status          string
	Error           string
	State           State
}

// View projects the current state for rendering. Continue appears once the
// buffer holds a full PIN and is disabled while a request is pending.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		Dots:          make([]bool, f.length),
		ContinueLabel: LabelContinue,
		State:         f.state,
	}
	for i := 0; i < f.buf.Len(); i++ {
		v.Dots[i] = true
	}
	v.ContinueVisible = f.buf.Full()
	v.ContinueEnabled = v.ContinueVisible && !f.submitting && f.state != Succeeded
	if f.state == InFlight {
		v.ContinueLabel = LabelLoading
		v.Status = StatusPending
	}
	if f.err != nil {
		v.Error = f.err.Message()
	}
	return v
}

// Filled counts the filled dots.
func (v View) Filled() int {
	n := 0
	for _, on := range v.Dots {
		if on {
			n++
		}
	}
	return n
}
