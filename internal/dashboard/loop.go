package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/rcpu/internal/client"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/logger"
	"github.com/rileyhilliard/rcpu/internal/sampler"
)

// Loop timing.
const (
	TickInterval        = time.Second
	InputPollTimeout    = 10 * time.Millisecond
	DefaultFetchTimeout = 300 * time.Millisecond
)

// LoopState is the poll loop lifecycle.
type LoopState int

const (
	StateStarting LoopState = iota
	StateRunning
	StateStopping
	StateStopped
)

// String returns a human-readable state name.
func (s LoopState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Loop refreshes the dashboard once per tick until the quit key is pressed
// or its context is cancelled. It runs on a single goroutine: fetch, render
// and input checks never overlap.
type Loop struct {
	term    Terminal
	fetcher client.Fetcher
	styles  Styles
	log     logger.Logger

	width        int
	fetchTimeout time.Duration
	tick         time.Duration
	inputPoll    time.Duration

	state  LoopState
	frames int
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithWidth sets the gauge width.
func WithWidth(w int) LoopOption {
	return func(l *Loop) {
		if w > 0 {
			l.width = w
		}
	}
}

// WithFetchTimeout bounds each metric fetch. It must stay below the tick.
func WithFetchTimeout(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 && d < l.tick {
			l.fetchTimeout = d
		}
	}
}

// WithStyles sets the gauge colors.
func WithStyles(s Styles) LoopOption {
	return func(l *Loop) { l.styles = s }
}

// WithLogger sets the loop logger. It must not write to the owned terminal.
func WithLogger(log logger.Logger) LoopOption {
	return func(l *Loop) { l.log = log }
}

// NewLoop creates a loop drawing to t with metrics from f.
func NewLoop(t Terminal, f client.Fetcher, opts ...LoopOption) *Loop {
	l := &Loop{
		term:         t,
		fetcher:      f,
		styles:       PlainStyles(),
		log:          logger.Noop(),
		width:        DefaultBarWidth,
		fetchTimeout: DefaultFetchTimeout,
		tick:         TickInterval,
		inputPoll:    InputPollTimeout,
		state:        StateStarting,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current lifecycle state.
func (l *Loop) State() LoopState {
	return l.state
}

// Frames returns how many frames have been drawn.
func (l *Loop) Frames() int {
	return l.frames
}

// Run acquires the terminal, refreshes until cancelled, and releases the
// terminal on every exit path, including panics. A nil return means the user
// quit or ctx was cancelled.
func (l *Loop) Run(ctx context.Context) (err error) {
	l.state = StateStarting
	if err := l.term.Acquire(); err != nil {
		_ = l.term.Release()
		l.state = StateStopped
		if errors.CodeOf(err) == "" {
			err = errors.WrapWithCode(err, errors.ErrStartup, "Cannot take control of the terminal", "")
		}
		return err
	}

	defer func() {
		l.state = StateStopping
		if rerr := l.term.Release(); rerr != nil && err == nil {
			err = rerr
		}
		l.state = StateStopped
	}()

	l.state = StateRunning
	l.log.Debug("dashboard running, tick %s", l.tick)

	next := time.Now()
	for {
		if err := l.refresh(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		next = next.Add(l.tick)
		if behind := time.Since(next); behind > l.tick {
			// A stall longer than a tick; don't try to catch up.
			next = time.Now()
		}
		if l.waitForTick(ctx, next) {
			l.log.Debug("quit after %d frames", l.frames)
			return nil
		}
	}
}

// refresh draws one complete frame. Failed fetches show as 0%.
func (l *Loop) refresh(ctx context.Context) error {
	values := make(map[sampler.Kind]uint8, len(sampler.Kinds))
	for _, kind := range sampler.Kinds {
		values[kind] = l.fetch(ctx, kind)
	}

	out := BuildFrame(values, l.width).Render(l.styles)
	if err := l.term.Clear(); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO, "Cannot clear terminal", "")
	}
	if err := l.term.Write(out); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO, "Cannot draw dashboard", "")
	}
	l.frames++
	return nil
}

func (l *Loop) fetch(ctx context.Context, kind sampler.Kind) uint8 {
	fetchCtx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	v, err := l.fetcher.Fetch(fetchCtx, kind)
	if err != nil {
		l.log.Debug("fetch %s: %s", kind, oneLine(err))
		return 0
	}
	return v
}

// waitForTick polls for input until deadline, returning true when the loop
// should stop. Input is checked at least once per tick even when the fetches
// overran it.
func (l *Loop) waitForTick(ctx context.Context, deadline time.Time) bool {
	for {
		if ctx.Err() != nil {
			return true
		}
		wait := time.Until(deadline)
		if wait > l.inputPoll {
			wait = l.inputPoll
		}
		if key, ok := l.term.PollKey(wait); ok && IsQuitKey(key) {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
	}
}

// oneLine flattens a structured error for a single log line.
func oneLine(err error) string {
	e, ok := err.(*errors.Error)
	if !ok {
		return err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}
