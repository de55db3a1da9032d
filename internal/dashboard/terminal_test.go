package dashboard

import (
	"os"
	"testing"
	"time"

	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsQuitKey(t *testing.T) {
	tests := []struct {
		key  rune
		want bool
	}{
		{'q', true},
		{'Q', true},
		{0x03, true},
		{'x', false},
		{' ', false},
		{0x1b, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsQuitKey(tt.key), "key %q", tt.key)
	}
}

func TestPollKey(t *testing.T) {
	keys := make(chan rune, 1)

	_, ok := pollKey(keys, 0)
	assert.False(t, ok, "non-blocking poll on empty channel")

	start := time.Now()
	_, ok = pollKey(keys, 20*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	keys <- 'q'
	k, ok := pollKey(keys, time.Second)
	assert.True(t, ok)
	assert.Equal(t, 'q', k)
}

func TestANSITerminal_AcquireNeedsTTY(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	term := NewANSITerminal(r, w)
	err = term.Acquire()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrStartup))

	assert.NoError(t, term.Release(), "release after failed acquire")
	assert.NoError(t, term.Release(), "release is idempotent")
}

func TestANSITerminal_ReadKeys(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	term := NewANSITerminal(r, w)
	done := make(chan struct{})
	go term.readKeys(r, done)

	_, err = w.Write([]byte("xq"))
	require.NoError(t, err)

	k, ok := term.PollKey(time.Second)
	require.True(t, ok)
	assert.Equal(t, 'x', k)
	k, ok = term.PollKey(time.Second)
	require.True(t, ok)
	assert.Equal(t, 'q', k)

	w.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine did not stop on EOF")
	}
}
