// Package infra provides shared infrastructure for the Azure DevOps MCP server:
// a TTL cache for sessions, a deduplicator that coalesces concurrent
// handshakes, and a circuit breaker guarding the handshake endpoint.
package infra

import (
	"context"
	"sync"
	"time"
)

// Deduplicator coalesces identical in-flight calls. While a call for a key is
// running, later callers with the same key wait for and share its result.
type Deduplicator[T any] struct {
	mu       sync.Mutex
	inflight map[string]*call[T]
}

type call[T any] struct {
	done    chan struct{}
	result  T
	err     error
	waiters int
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator[T any]() *Deduplicator[T] {
	return &Deduplicator[T]{
		inflight: make(map[string]*call[T]),
	}
}

// Do runs fn unless a call with the same key is already running, in which case
// it waits for that call. The boolean result reports whether the value was shared.
// fn runs on its own goroutine and is not tied to any caller: every caller,
// the one that started it included, stops waiting when its ctx is done while
// fn runs to completion for the others.
func (d *Deduplicator[T]) Do(ctx context.Context, key string, fn func() (T, error)) (T, bool, error) {
	d.mu.Lock()
	c, shared := d.inflight[key]
	if shared {
		c.waiters++
	} else {
		c = &call[T]{done: make(chan struct{}), waiters: 1}
		d.inflight[key] = c
		go d.run(key, c, fn)
	}
	d.mu.Unlock()

	select {
	case <-c.done:
		return c.result, shared, c.err
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

func (d *Deduplicator[T]) run(key string, c *call[T], fn func() (T, error)) {
	c.result, c.err = fn()

	d.mu.Lock()
	delete(d.inflight, key)
	d.mu.Unlock()
	close(c.done)
}

// InFlight returns the number of keys with a running call.
func (d *Deduplicator[T]) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// CircuitState represents the current state of the circuit breaker
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation
	CircuitOpen                         // Failing fast, rejecting requests
	CircuitHalfOpen                     // Testing if service recovered
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a CircuitBreaker.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	ResetTimeout     time.Duration // open duration before probing again
	HalfOpenMax      int           // probes allowed while half-open
}

// DefaultBreakerConfig opens after 5 consecutive failures and probes again after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMax:      1,
	}
}

// CircuitBreaker fails fast once the guarded endpoint has failed repeatedly.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg BreakerConfig
	now func() time.Time

	state            CircuitState
	consecutiveFails int
	lastFailure      time.Time
	halfOpenCount    int
}

// NewCircuitBreaker creates a closed circuit breaker. Zero fields in cfg fall
// back to DefaultBreakerConfig.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = def.HalfOpenMax
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now, state: CircuitClosed}
}

// Allow returns nil if a request may proceed, or *ErrCircuitOpen otherwise.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.cfg.ResetTimeout {
			cb.state = CircuitHalfOpen
			cb.halfOpenCount = 1
			return nil
		}
	case CircuitHalfOpen:
		if cb.halfOpenCount < cb.cfg.HalfOpenMax {
			cb.halfOpenCount++
			return nil
		}
	}
	return &ErrCircuitOpen{
		State:    cb.state.String(),
		RetryAt:  cb.lastFailure.Add(cb.cfg.ResetTimeout),
		Failures: cb.consecutiveFails,
	}
}

// RecordSuccess closes the circuit and resets the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails = 0
	cb.halfOpenCount = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure, opening the circuit at the threshold or
// immediately when half-open.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails++
	cb.lastFailure = cb.now()

	switch cb.state {
	case CircuitClosed:
		if cb.consecutiveFails >= cb.cfg.FailureThreshold {
			cb.state = CircuitOpen
		}
	case CircuitHalfOpen:
		cb.state = CircuitOpen
		cb.halfOpenCount = 0
	}
}

// Abort returns a slot taken by Allow when the request ended without an
// outcome (caller canceled, request never sent). The failure count is untouched.
func (cb *CircuitBreaker) Abort() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen && cb.halfOpenCount > 0 {
		cb.halfOpenCount--
	}
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns circuit breaker statistics
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerStats{
		State:            cb.state.String(),
		ConsecutiveFails: cb.consecutiveFails,
		LastFailure:      cb.lastFailure,
	}
}

// CircuitBreakerStats contains circuit breaker statistics
type CircuitBreakerStats struct {
	State            string    `json:"state"`
	ConsecutiveFails int       `json:"consecutive_failures"`
	LastFailure      time.Time `json:"last_failure,omitempty"`
}

// ErrCircuitOpen is returned by Allow while the circuit rejects requests.
type ErrCircuitOpen struct {
	State    string
	RetryAt  time.Time
	Failures int
}

func (e *ErrCircuitOpen) Error() string {
	return "circuit breaker is " + e.State + " after repeated handshake failures, retry after " + e.RetryAt.Format(time.RFC3339)
}
