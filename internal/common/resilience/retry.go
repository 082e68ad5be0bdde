// Package resilience wraps a single upstream operation with a per-attempt
// timeout, bounded exponential-backoff retry with jitter, and transient
// error classification. Non-transient failures are never retried.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"astrodeck/internal/common/config"
	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/metrics"
)

// Policy controls the retry behaviour of [Do].
type Policy struct {
	// Timeout is the hard deadline applied to each individual attempt.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt, so an
	// operation is invoked at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay is the delay before the first retry. Subsequent retries use
	// exponential back-off: BaseDelay * 2^attempt, capped at MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Jitter adds randomness to the delay. A value of 0.2 means ±20% of
	// the computed delay. Zero disables jitter.
	Jitter float64

	// IsTransient decides whether an error is worth retrying.
	// Defaults to IsTransientNet.
	IsTransient func(error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// PolicyFromConfig builds a Policy from its configuration counterpart.
func PolicyFromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.BaseDelay,
		MaxDelay:   cfg.MaxDelay,
		Jitter:     cfg.Jitter,
	}
}

// NextDelay returns the backoff delay for the given attempt (0-indexed):
// min(max, base*2^attempt) plus uniform jitter of ±jitter fraction.
// The result is never negative.
func NextDelay(attempt int, base, max time.Duration, jitter float64) time.Duration {
	delay := float64(base) * math.Pow(2, float64(attempt))
	if capped := float64(max); delay > capped {
		delay = capped
	}
	if jitter > 0 {
		delay += delay * jitter * (rand.Float64()*2 - 1)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Do calls op with a per-attempt timeout, retrying transient failures up to
// p.MaxRetries times. Non-transient failures return immediately. The parent
// context is checked before every retry wait; a sibling operation's timeout
// never cancels this one because each attempt derives its own deadline.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	transient := p.IsTransient
	if transient == nil {
		transient = IsTransientNet
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		result, err := func() (T, error) {
			attemptCtx := ctx
			if p.Timeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
				defer cancel()
			}
			return op(attemptCtx)
		}()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !transient(err) || attempt == p.MaxRetries {
			break
		}

		delay := NextDelay(attempt, p.BaseDelay, p.MaxDelay, p.Jitter)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// DoWithFallback runs op under the policy and substitutes fallback when all
// attempts fail, logging the final outcome with the attempt count. Callers
// that must observe the failure use Do directly instead.
func DoWithFallback[T any](ctx context.Context, log logger.Logger, name string, p Policy, op func(context.Context) (T, error), fallback T) T {
	attempts := 0
	counted := func(c context.Context) (T, error) {
		attempts++
		return op(c)
	}

	result, err := Do(ctx, p, counted)
	if err != nil {
		metrics.UpstreamFallbacks.WithLabelValues(name).Inc()
		log.Warn("upstream call degraded to fallback", map[string]interface{}{
			"operation": name,
			"attempts":  attempts,
			"error":     err.Error(),
		})
		return fallback
	}
	if attempts > 1 {
		log.Info("upstream call succeeded after retry", map[string]interface{}{
			"operation": name,
			"attempts":  attempts,
		})
	}
	return result
}
