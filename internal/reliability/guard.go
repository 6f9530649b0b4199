// Package reliability wraps calls to external dependencies with bounded
// retry and a per-dependency circuit breaker.
//
// Each dependency (article fetch, quiz generation) owns one Guard. The two
// guards are fully independent: an outage on one must never affect the
// availability of the other. Breaker state is the only long-lived mutable
// state in the core, and every transition happens under the guard's mutex.
package reliability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrUnavailable is returned without invoking the wrapped operation while
// the circuit breaker is open. Callers can treat it as "try again after the
// cooldown" rather than "the operation failed".
var ErrUnavailable = errors.New("dependency unavailable: circuit breaker open")

// State is the circuit breaker state.
type State string

const (
	// StateClosed is the normal state: calls pass through.
	StateClosed State = "closed"
	// StateOpen denies all calls until the cooldown elapses.
	StateOpen State = "open"
	// StateHalfOpen allows exactly one probe call through.
	StateHalfOpen State = "half-open"
)

// Policy configures a Guard's retry and breaker behavior.
type Policy struct {
	// MaxAttempts bounds the number of tries per call, including the first.
	MaxAttempts int

	// MinDelay and MaxDelay bound the exponential backoff between retries.
	MinDelay time.Duration
	MaxDelay time.Duration

	// FailureThreshold is the consecutive-failure count that opens the
	// breaker.
	FailureThreshold int

	// Cooldown is how long the breaker stays open before allowing a
	// half-open probe.
	Cooldown time.Duration
}

// Guard is the retry/circuit-breaker decorator for one dependency.
type Guard struct {
	name   string
	policy Policy

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool

	// Injectable for deterministic tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewGuard creates a Guard in the closed state.
func NewGuard(name string, policy Policy) *Guard {
	return &Guard{
		name:   name,
		policy: policy,
		state:  StateClosed,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// sleepCtx waits for the given duration or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// State returns the breaker's current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Do runs op under the guard. Failures are retried up to the policy's
// attempt count with exponential backoff; exhausting the attempts surfaces
// the last underlying error. An open breaker fails fast with
// ErrUnavailable and is never retried.
func (g *Guard) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= g.policy.MaxAttempts; attempt++ {
		if err := g.allow(); err != nil {
			return err
		}

		err := op(ctx)
		g.record(err)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < g.policy.MaxAttempts {
			slog.Warn("dependency call failed, retrying",
				"dependency", g.name,
				"attempt", attempt,
				"error", err,
			)
			if serr := g.sleep(ctx, g.backoff(attempt)); serr != nil {
				return fmt.Errorf("retry wait interrupted: %w", serr)
			}
		}
	}
	return lastErr
}

// Execute runs op under guard g and returns its result. It is Do for
// operations that produce a value.
func Execute[T any](ctx context.Context, g *Guard, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := g.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// backoff returns the delay before the next attempt: MinDelay doubled per
// completed attempt, capped at MaxDelay.
func (g *Guard) backoff(attempt int) time.Duration {
	delay := g.policy.MinDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= g.policy.MaxDelay {
			return g.policy.MaxDelay
		}
	}
	if delay > g.policy.MaxDelay {
		delay = g.policy.MaxDelay
	}
	return delay
}

// allow decides whether one attempt may proceed. While open it checks the
// cooldown clock; once the cooldown has elapsed the breaker moves to
// half-open and admits a single probe.
func (g *Guard) allow() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateClosed:
		return nil
	case StateOpen:
		if g.now().Sub(g.lastFailure) < g.policy.Cooldown {
			return fmt.Errorf("%w: %s cooling down", ErrUnavailable, g.name)
		}
		g.state = StateHalfOpen
		g.probing = true
		slog.Info("circuit breaker half-open, allowing probe", "dependency", g.name)
		return nil
	case StateHalfOpen:
		if g.probing {
			return fmt.Errorf("%w: %s probe in flight", ErrUnavailable, g.name)
		}
		g.probing = true
		return nil
	}
	return nil
}

// record applies an attempt's outcome to the breaker state machine.
func (g *Guard) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		if g.state != StateClosed {
			slog.Info("circuit breaker closed", "dependency", g.name)
		}
		g.state = StateClosed
		g.failures = 0
		g.probing = false
		return
	}

	g.failures++
	g.lastFailure = g.now()
	g.probing = false

	if g.state == StateHalfOpen {
		// Failed probe: reopen and restart the cooldown clock.
		g.state = StateOpen
		slog.Warn("circuit breaker reopened after failed probe", "dependency", g.name)
		return
	}

	if g.failures >= g.policy.FailureThreshold {
		g.state = StateOpen
		slog.Error("circuit breaker opened",
			"dependency", g.name,
			"failures", g.failures,
		)
	}
}
