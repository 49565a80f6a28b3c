// Package breaker provides a named circuit breaker that isolates failing
// upstream dependencies. After a configured number of consecutive failures the
// circuit opens and rejects calls for a cooldown period, then allows probe
// calls (half-open) until enough successes close it again.
//
// The breaker never retries and never times out the wrapped operation; retry
// policy belongs to the caller and timeouts to the underlying transport.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is returned when a call is rejected because the circuit is open.
// It is distinct from any error produced by the wrapped operation, so callers
// can tell "upstream failed" from "upstream currently isolated".
var ErrOpen = errors.New("circuit open")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed indicates normal operation.
	StateClosed State = iota
	// StateOpen indicates the breaker is rejecting calls.
	StateOpen
	// StateHalfOpen indicates probe calls are permitted.
	StateHalfOpen
)

// String returns the lowercase state name used in logs and API responses.
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

// Config defines the thresholds controlling state transitions.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint
	// Cooldown is how long an open circuit rejects calls before probing again.
	Cooldown time.Duration
	// SuccessThreshold is the number of half-open successes that close the circuit.
	SuccessThreshold uint
}

// Snapshot is an immutable view of a breaker's state, exposed to operators.
type Snapshot struct {
	Name        string     `json:"name"`
	State       string     `json:"state"`
	Failures    uint       `json:"failures"`
	Successes   uint       `json:"successes"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
	LastCheck   time.Time  `json:"last_check"`
}

// Breaker guards calls to a single named upstream dependency. The zero value
// is not usable; create instances with New. All methods are safe for
// concurrent use, and concurrent callers share the same failure accounting.
type Breaker struct {
	name string
	cfg  Config
	now  func() time.Time

	mu          sync.Mutex
	state       State
	failures    uint
	successes   uint
	lastFailure *time.Time
	lastCheck   time.Time
}

// New creates a closed breaker for the named dependency.
// Non-positive thresholds are normalized to 1 so a misconfigured breaker
// degrades to "open on first failure" rather than never opening.
func New(name string, cfg Config) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 1
	}
	return &Breaker{
		name:  name,
		cfg:   cfg,
		now:   time.Now,
		state: StateClosed,
	}
}

// Execute runs the operation under the breaker's protection.
//
// In the closed state the operation runs normally and its error, if any, is
// counted and propagated. In the open state the call is rejected with ErrOpen
// until the cooldown elapses, at which point the breaker moves to half-open
// and the call is attempted. A half-open failure reopens the circuit
// immediately; SuccessThreshold consecutive half-open successes close it.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := op(ctx)
	b.record(err)
	return err
}

// Execute runs an operation with a typed result under the breaker's
// protection. On rejection or failure the zero value of T is returned
// alongside the error.
func Execute[T any](ctx context.Context, b *Breaker, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func(ctx context.Context) error {
		value, err := op(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// allow decides whether a call may proceed, transitioning open breakers to
// half-open once the cooldown has elapsed.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}

	if b.now().Sub(b.lastCheck) <= b.cfg.Cooldown {
		return fmt.Errorf("%s: %w", b.name, ErrOpen)
	}

	// Cooldown elapsed, probe the upstream.
	b.state = StateHalfOpen
	b.successes = 0
	return nil
}

// record updates the breaker state after an attempted call.
func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	if err != nil {
		b.lastFailure = &now
		b.lastCheck = now

		switch b.state {
		case StateHalfOpen:
			// A failed probe reopens the circuit for a full cooldown.
			b.state = StateOpen
		case StateClosed:
			b.failures++
			if b.failures >= b.cfg.FailureThreshold {
				b.state = StateOpen
			}
		case StateOpen:
			// A concurrent caller opened the circuit while this call was in
			// flight; the timestamps above are all that needs updating.
		}
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
		}
	case StateClosed:
		b.failures = 0
	case StateOpen:
		// Late success from a call admitted before the circuit opened; leave
		// the open state to expire through its cooldown.
	}
}

// Name returns the name of the protected dependency.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() uint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Snapshot returns an immutable view of the breaker's current state.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Name:        b.name,
		State:       b.state.String(),
		Failures:    b.failures,
		Successes:   b.successes,
		LastFailure: b.lastFailure,
		LastCheck:   b.lastCheck,
	}
}
