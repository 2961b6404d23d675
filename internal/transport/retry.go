package transport

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryPolicy controls how many attempts a call gets and how long to wait between them.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Jitter is the upper bound of the random fraction added to each delay.
	Jitter float64
	// RetryableStatus decides whether an error status is worth another attempt.
	RetryableStatus func(status int) bool
}

// DefaultRetryPolicy makes three attempts with exponential backoff from one
// second and up to 30% jitter. Delays are not capped.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	BaseDelay:       1 * time.Second,
	Jitter:          0.3,
	RetryableStatus: RetryableStatus,
}

// RetryableStatus treats 429 and every 5xx as transient.
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.RetryableStatus == nil {
		p.RetryableStatus = RetryableStatus
	}
	return p
}

// Backoff returns the delay after the given 1-based attempt, using u in [0,1)
// as the jitter sample.
func (p RetryPolicy) Backoff(attempt int, u float64) time.Duration {
	exp := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	return time.Duration(exp * (1 + u*p.Jitter))
}

// retryState is scoped to one logical call.
type retryState struct {
	attempt int
	lastErr error
	waited  time.Duration
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func defaultJitter() float64 {
	return rand.Float64()
}
