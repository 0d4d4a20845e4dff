package errors

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Execute while the circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the circuit breaker state.
type State int

const (
	// StateClosed admits calls normally.
	StateClosed State = iota
	// StateOpen rejects calls without invoking the dependency.
	StateOpen
	// StateHalfOpen admits a probe call after the reset timeout.
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
	}
	return "unknown"
}

// CircuitBreaker guards a best-effort dependency, such as the telemetry
// history database. After maxFailures consecutive failures it fails fast
// until resetTimeout has passed, then lets one test call through.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.RWMutex
	state       State
	failures    int
	lastFailure time.Time
}

// CircuitBreakerOption configures a CircuitBreaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithMaxFailures sets how many consecutive failures open the circuit.
func WithMaxFailures(n int) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.maxFailures = n
	}
}

// WithResetTimeout sets how long the circuit stays open before a probe
// call is allowed through.
func WithResetTimeout(d time.Duration) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.resetTimeout = d
	}
}

// NewCircuitBreaker creates a breaker named for the dependency it
// guards. Defaults: 5 consecutive failures open the circuit, recovery
// is probed after 30 seconds.
func NewCircuitBreaker(name string, opts ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxFailures:  5,
		resetTimeout: 30 * time.Second,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Name returns the name of the guarded dependency.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the effective state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.currentState()
}

// currentState folds the reset timeout into the stored state: an open
// circuit whose timeout has elapsed reads as half-open. Callers must
// hold mu.
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) > cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Failures returns the consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}

// Allow reports whether a call would currently be admitted.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.currentState() != StateOpen
}

// RecordSuccess marks an out-of-band call as succeeded, closing the
// circuit and clearing the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.settle(false, true)
}

// RecordFailure marks an out-of-band call as failed. Reaching the
// failure threshold opens the circuit.
func (cb *CircuitBreaker) RecordFailure() {
	cb.settle(false, false)
}

// Execute runs fn under the breaker. While the circuit is open it fails
// fast with ErrCircuitOpen and fn is never called. In half-open state fn
// is the probe: its outcome decides whether the circuit closes again or
// reopens for another full timeout.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probe, err := cb.begin()
	if err != nil {
		return err
	}

	callErr := fn()
	cb.settle(probe, callErr == nil)
	return callErr
}

// begin decides whether a call may proceed and reports whether it runs
// as a half-open probe.
func (cb *CircuitBreaker) begin() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentState() {
	case StateOpen:
		return false, ErrCircuitOpen
	case StateHalfOpen:
		cb.state = StateHalfOpen
		return true, nil
	default:
		return false, nil
	}
}

// settle records the outcome of an admitted call.
func (cb *CircuitBreaker) settle(probe, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if ok {
		cb.failures = 0
		cb.state = StateClosed
		return
	}

	if probe {
		// A failed probe reopens the circuit for another full timeout
		// without touching the pre-trip failure count.
		cb.state = StateOpen
		cb.lastFailure = time.Now()
		return
	}

	cb.failures++
	cb.lastFailure = time.Now()
	if cb.failures >= cb.maxFailures {
		cb.state = StateOpen
	}
}
