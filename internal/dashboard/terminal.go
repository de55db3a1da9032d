package dashboard

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"golang.org/x/term"
)

// Keys recognized by the dashboard. Raw mode delivers Ctrl+C as a byte
// instead of SIGINT.
const (
	KeyQuit  = 'q'
	KeyCtrlC = 0x03
)

// Terminal is the exclusive terminal handle owned by the poll loop.
//
// Acquire enters the alternate screen, enables raw input and hides the
// cursor. Release undoes whatever Acquire managed to do: leaves the alternate
// screen, restores the previous mode and shows the cursor. Release is safe to
// call more than once and after a failed Acquire.
type Terminal interface {
	Acquire() error
	Release() error
	Clear() error
	Write(s string) error
	// PollKey waits at most timeout for a key press.
	PollKey(timeout time.Duration) (rune, bool)
}

// ANSITerminal drives a real TTY with ANSI escape sequences.
type ANSITerminal struct {
	in  *os.File
	out *termenv.Output

	mu           sync.Mutex
	altScreen    bool
	rawState     *term.State
	cursorHidden bool

	reader cancelreader.CancelReader
	keys   chan rune
	done   chan struct{}
}

// NewANSITerminal creates a terminal reading keys from in and drawing to out.
func NewANSITerminal(in, out *os.File) *ANSITerminal {
	return &ANSITerminal{
		in:   in,
		out:  termenv.NewOutput(out),
		keys: make(chan rune, 16),
	}
}

// Acquire takes control of the terminal. On failure every step already
// taken is rolled back.
func (t *ANSITerminal) Acquire() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return errors.New(errors.ErrStartup,
			"Dashboard needs an interactive terminal",
			"Run rcpu dashboard from a terminal, not a pipe")
	}

	t.out.AltScreen()
	t.altScreen = true

	state, err := term.MakeRaw(fd)
	if err != nil {
		t.releaseLocked()
		return errors.WrapWithCode(err, errors.ErrStartup,
			"Cannot switch terminal to raw mode", "")
	}
	t.rawState = state

	t.out.HideCursor()
	t.cursorHidden = true

	reader, err := cancelreader.NewReader(t.in)
	if err != nil {
		t.releaseLocked()
		return errors.WrapWithCode(err, errors.ErrStartup,
			"Cannot read keyboard input", "")
	}
	t.reader = reader
	t.done = make(chan struct{})
	go t.readKeys(reader, t.done)

	return nil
}

// Release returns the terminal to the state it had before Acquire.
func (t *ANSITerminal) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.releaseLocked()
}

func (t *ANSITerminal) releaseLocked() error {
	var firstErr error

	if t.reader != nil {
		// A reader that can't be cancelled stays blocked in Read; don't wait on it.
		if t.reader.Cancel() {
			<-t.done
		}
		if err := t.reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		t.reader = nil
	}

	if t.altScreen {
		t.out.ExitAltScreen()
		t.altScreen = false
	}
	if t.rawState != nil {
		if err := term.Restore(int(t.in.Fd()), t.rawState); err != nil && firstErr == nil {
			firstErr = err
		}
		t.rawState = nil
	}
	if t.cursorHidden {
		t.out.ShowCursor()
		t.cursorHidden = false
	}

	if firstErr != nil {
		return errors.WrapWithCode(firstErr, errors.ErrIO,
			"Terminal may not be fully restored", "Run 'reset' if the terminal looks wrong")
	}
	return nil
}

// Clear erases the screen and homes the cursor.
func (t *ANSITerminal) Clear() error {
	t.out.ClearScreen()
	return nil
}

// Write draws s at the cursor.
func (t *ANSITerminal) Write(s string) error {
	_, err := io.WriteString(t.out, s)
	return err
}

// PollKey returns the next buffered key, waiting at most timeout.
func (t *ANSITerminal) PollKey(timeout time.Duration) (rune, bool) {
	return pollKey(t.keys, timeout)
}

// readKeys forwards input bytes until the reader is cancelled. Keys arriving
// while the buffer is full are dropped.
func (t *ANSITerminal) readKeys(r io.Reader, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case t.keys <- rune(b):
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

func pollKey(keys <-chan rune, timeout time.Duration) (rune, bool) {
	if timeout <= 0 {
		select {
		case k := <-keys:
			return k, true
		default:
			return 0, false
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case k := <-keys:
		return k, true
	case <-timer.C:
		return 0, false
	}
}

// IsQuitKey reports whether k stops the dashboard.
func IsQuitKey(k rune) bool {
	return k == KeyQuit || k == 'Q' || k == KeyCtrlC
}
