package services

import (
	"context"
	"log"
	"time"

	"github.com/raghav0014/AI-Feedback/errs"
)

// Notifier delivers non-blocking, user-visible service notices, e.g. the
// degraded-service banner when a fallback tier answers a request.
type Notifier interface {
	Notify(level, message string)
}

// LogNotifier writes notices to the process log. It is the default when no
// websocket hub is wired up (tests, worker-only deployments).
type LogNotifier struct{}

func (LogNotifier) Notify(level, message string) {
	log.Printf("[%s] %s", level, message)
}

// Tier is one fallback level of a logical operation: primary database,
// secondary API, local cache. Attempt either produces the result or reports
// why the tier could not.
type Tier[T any] struct {
	Name    string
	Attempt func(ctx context.Context) (T, error)
}

// FallbackPolicy controls retries within a tier. Sleep is injectable so
// tests can assert the schedule without waiting it out.
type FallbackPolicy struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	AttemptTimeout time.Duration
	Sleep          func(time.Duration)
}

// DefaultFallbackPolicy matches the production schedule: 3 attempts per
// tier, waits of base*1, base*2, base*3 after each failure, 10s cap per
// attempt.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{
		MaxAttempts:    3,
		BackoffBase:    time.Second,
		AttemptTimeout: 10 * time.Second,
		Sleep:          time.Sleep,
	}
}

// ExecuteTiers runs the operation against each tier in order. A tier is
// retried on connectivity/availability errors only; a well-formed answer
// from a reachable tier (not found, validation, conflict) is returned to
// the caller immediately and never triggers fallthrough. When a non-primary
// tier serves the request, a degraded-service notice is emitted. Returns
// the result and the name of the tier that served it.
func ExecuteTiers[T any](ctx context.Context, operation string, tiers []Tier[T], policy FallbackPolicy, notifier Notifier) (T, string, error) {
	var zero T
	var lastErr error

	if notifier == nil {
		notifier = LogNotifier{}
	}
	if policy.Sleep == nil {
		policy.Sleep = time.Sleep
	}

	for i, tier := range tiers {
		result, err := attemptTier(ctx, tier, policy)
		if err == nil {
			if i > 0 {
				notifier.Notify("warning", "Degraded service: "+operation+" served by "+tier.Name)
			}
			return result, tier.Name, nil
		}
		if !errs.IsRetryable(err) {
			// A genuine answer, just not a happy one. Surface it.
			return zero, tier.Name, err
		}
		log.Printf("Tier %s failed for %s, falling through: %v", tier.Name, operation, err)
		lastErr = err
	}

	return zero, "", errs.Upstream("All tiers failed for "+operation, lastErr)
}

// attemptTier retries a single tier with the linear backoff schedule. Only
// retryable errors are retried; the wait after the final failed attempt is
// part of the schedule before fallthrough proceeds.
func attemptTier[T any](ctx context.Context, tier Tier[T], policy FallbackPolicy) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
		}

		result, err := tier.Attempt(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, nil
		}
		if !errs.IsRetryable(err) {
			return zero, err
		}

		lastErr = err
		policy.Sleep(policy.BackoffBase * time.Duration(attempt))
	}

	return zero, lastErr
}
