package pinentry

// Buffer holds typed PIN digits up to a fixed capacity. It deliberately has no
// String method so a PIN never ends up in a formatted log line.
type Buffer struct {
	digits []byte
	max    int
}

// NewBuffer builds an empty buffer accepting at most capacity digits.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{digits: make([]byte, 0, capacity), max: capacity}
}

// Append adds d when it is an ASCII digit and the buffer is not full.
func (b *Buffer) Append(d rune) bool {
	if d < '0' || d > '9' || len(b.digits) >= b.max {
		return false
	}
	b.digits = append(b.digits, byte(d))
	return true
}

// DeleteLast drops the most recent digit.
func (b *Buffer) DeleteLast() bool {
	if len(b.digits) == 0 {
		return false
	}
	b.digits = b.digits[:len(b.digits)-1]
	return true
}

func (b *Buffer) Len() int { return len(b.digits) }
func (b *Buffer) Full() bool { return len(b.digits) == b.max }

// Digits returns a copy of the typed PIN.
func (b *Buffer) Digits() string {
	return string(b.digits)
}
