// Package circuitbreaker stops calling a failing dependency for a while
// so requests fail fast instead of queueing on timeouts.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling fn while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Settings struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int
	// Timeout is how long the breaker stays open before one trial call.
	Timeout time.Duration
	// OnStateChange is called with the lock held; keep it cheap.
	OnStateChange func(name string, from, to State)
}

type CircuitBreaker struct {
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	return &CircuitBreaker{settings: settings, now: time.Now}
}

// State reports the current state, moving an expired open breaker to
// half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expire()
	return cb.state
}

// Execute runs fn unless the breaker is open. Only one trial call runs
// while half-open; concurrent callers get ErrOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}
	err := fn()
	cb.after(err)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.expire()
	switch cb.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if cb.trial {
			return ErrOpen
		}
		cb.trial = true
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.trial = false
		if err != nil {
			cb.open()
			return
		}
		cb.failures = 0
		cb.setState(StateClosed)
		return
	}

	if err == nil {
		cb.failures = 0
		return
	}
	cb.failures++
	if cb.failures >= cb.settings.MaxFailures {
		cb.open()
	}
}

func (cb *CircuitBreaker) expire() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.settings.Timeout {
		cb.setState(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	cb.setState(StateOpen)
}

func (cb *CircuitBreaker) setState(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, from, to)
	}
}
