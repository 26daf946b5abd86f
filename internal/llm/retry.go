package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes exponential waits with ±20% jitter.
type Backoff struct {
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`

	// jitter returns a value in [0,1); nil uses math/rand.
	jitter func() float64
}

// Wait returns how long to pause before retry number attempt (0-based).
// A rate-limit error with RetryAfter set overrides the computed value.
func (b Backoff) Wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	if b.InitialWait <= 0 {
		return 0
	}

	mult := b.Multiplier
	if mult <= 0 {
		mult = 1
	}
	wait := float64(b.InitialWait) * math.Pow(mult, float64(attempt))
	if b.MaxWait > 0 && wait > float64(b.MaxWait) {
		wait = float64(b.MaxWait)
	}

	j := rand.Float64
	if b.jitter != nil {
		j = b.jitter
	}
	wait += wait * 0.2 * (2*j() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryProvider retries transient transport errors. Retries draw from the
// call budget on the context, so under the question orchestrator they share
// its cap on backend calls.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p. Configs with MaxAttempts <= 1 return p unchanged.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidRetried := false
	backoff := r.config.Backoff()

	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !shouldRetry(err, &invalidRetried) || attempt == r.config.MaxAttempts-1 {
			break
		}
		// The caller spent the budget for the first call.
		if !SpendCall(ctx) {
			break
		}
		if err := Sleep(ctx, backoff.Wait(attempt, err)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry: context errors and truncation are final, invalid responses
// get one more try, everything else is treated as transient.
func shouldRetry(err error, invalidRetried *bool) bool {
	if IsTimeout(err) {
		return false
	}
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}
