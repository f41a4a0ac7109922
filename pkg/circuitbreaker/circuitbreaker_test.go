package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

type transition struct {
	from, to State
}

func newTestBreaker(clock *time.Time, seen *[]transition) *CircuitBreaker {
	cb := NewCircuitBreaker(Settings{
		Name:        "redis",
		MaxFailures: 2,
		Timeout:     time.Second,
		OnStateChange: func(name string, from, to State) {
			*seen = append(*seen, transition{from, to})
		},
	})
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	clock := time.Unix(0, 0)
	var seen []transition
	cb := newTestBreaker(&clock, &seen)

	assert.ErrorIs(t, cb.Execute(func() error { return errDown }), errDown)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(func() error { return errDown }), errDown)
	assert.ErrorIs(t, cb.Execute(func() error { return errDown }), errDown)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []transition{{StateClosed, StateOpen}}, seen)
}

func TestHalfOpenTrial(t *testing.T) {
	clock := time.Unix(0, 0)
	var seen []transition
	cb := newTestBreaker(&clock, &seen)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errDown })
	}
	require.Equal(t, StateOpen, cb.State())

	clock = clock.Add(time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	// A second caller is turned away while the trial runs.
	err := cb.Execute(func() error {
		assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
		return errDown
	})
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, StateOpen, cb.State())

	clock = clock.Add(time.Second)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, seen)
}

func TestDefaults(t *testing.T) {
	cb := NewCircuitBreaker(Settings{})
	assert.Equal(t, 5, cb.settings.MaxFailures)
	assert.Equal(t, 10*time.Second, cb.settings.Timeout)
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
