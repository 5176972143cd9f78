package captioning

import (
	"errors"
	"time"

	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy returns how long to wait after the given 1-based attempt failed with err
type RetryPolicy func(attempt int, err error) time.Duration

// DefaultRetryPolicy waits 10*attempt units while the model is loading and
// 2^(attempt-1) units after any other failure.
func DefaultRetryPolicy(unit time.Duration) RetryPolicy {
	return func(attempt int, err error) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		if errors.Is(err, providers.ErrModelLoading) {
			return time.Duration(10*attempt) * unit
		}
		return time.Duration(1<<(attempt-1)) * unit
	}
}

// attemptTracker feeds the outcome of each attempt into the policy
type attemptTracker struct {
	policy      RetryPolicy
	maxAttempts int
	attempts    int
	lastErr     error
}

func (a *attemptTracker) record(err error) {
	a.attempts++
	a.lastErr = err
}

func (a *attemptTracker) backoff() retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		if a.attempts >= a.maxAttempts {
			return 0, true
		}
		return a.policy(a.attempts, a.lastErr), false
	})
}
