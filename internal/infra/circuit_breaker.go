package infra

import (
	"errors"
	"sync"
	"time"
)

// CircuitBreaker stops calling a failing dependency for a while.
//
//	closed    calls pass; `threshold` consecutive failures open it
//	open      calls fail fast with ErrCircuitOpen until cooldown elapses
//	half-open one trial call passes; success closes, failure reopens
type CircuitBreaker struct {
	mu        sync.Mutex
	state     CBState
	failures  int
	openedAt  time.Time
	probing   bool
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("circuit breaker aberto")

// NewCircuitBreaker returns a closed breaker. Non-positive arguments fall back
// to 3 failures and 30s.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// State reports the current state, moving open to half-open once the
// cooldown has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cooldown {
		cb.state = CBHalfOpen
		cb.probing = false
	}
	return cb.state
}

// Execute runs fn unless the breaker is open or a half-open trial call is already
// in flight.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	switch cb.stateLocked() {
	case CBOpen:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case CBHalfOpen:
		if cb.probing {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err == nil {
		cb.state, cb.failures, cb.probing = CBClosed, 0, false
		return nil
	}
	cb.failures++
	if cb.state == CBHalfOpen || cb.failures >= cb.threshold {
		cb.state, cb.openedAt, cb.probing = CBOpen, cb.now(), false
	}
	return err
}
