// Package retry provides the backoff schedule used to retry idempotent
// reads against the scanning service.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
)

// BackoffStrategy defines how to calculate the next retry delay.
type BackoffStrategy int

const (
	// BackoffExponential uses exponential backoff: base * 2^attempt
	BackoffExponential BackoffStrategy = iota

	// BackoffLinear uses linear backoff: base * attempt
	BackoffLinear

	// BackoffConstant uses constant backoff: base (no increase)
	BackoffConstant
)

const (
	// DefaultMaxRetries is the number of extra attempts made for a read.
	DefaultMaxRetries = 2

	// DefaultBaseInterval is the delay before the first retry.
	DefaultBaseInterval = 500 * time.Millisecond

	// DefaultMaxInterval caps a single delay.
	DefaultMaxInterval = 5 * time.Second
)

// BackoffConfig configures the backoff behavior.
type BackoffConfig struct {
	// Strategy is the backoff strategy to use.
	// Default is BackoffExponential.
	Strategy BackoffStrategy `yaml:"strategy" json:"strategy"`

	// MaxRetries is the number of retries after the first attempt.
	// Zero disables retrying.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// BaseInterval is the base interval for backoff calculation.
	BaseInterval time.Duration `yaml:"base_interval" json:"base_interval"`

	// MaxInterval is the maximum interval between retries.
	MaxInterval time.Duration `yaml:"max_interval" json:"max_interval"`

	// Jitter adds randomness to prevent thundering herd.
	// Value between 0.0 (no jitter) and 1.0 (full jitter).
	Jitter float64 `yaml:"jitter" json:"jitter"`
}

// DefaultBackoffConfig returns a BackoffConfig with default values.
func DefaultBackoffConfig() *BackoffConfig {
	return &BackoffConfig{
		Strategy:     BackoffExponential,
		MaxRetries:   DefaultMaxRetries,
		BaseInterval: DefaultBaseInterval,
		MaxInterval:  DefaultMaxInterval,
		Jitter:       0.1,
	}
}

// Delay returns the wait before retry number attempt (1-based).
//
// Backoff schedule with the default 500ms base:
//
//	attempt 1: 500ms
//	attempt 2: 1s
//	attempt 3: 2s
//	attempt 4: 4s
//	attempt 5: 5s (capped at MaxInterval)
func (c *BackoffConfig) Delay(attempt int) time.Duration {
	interval := c.calculateInterval(attempt)
	if c.Jitter > 0 {
		interval = c.applyJitter(interval)
	}
	return interval
}

// calculateInterval calculates the backoff interval without jitter.
func (c *BackoffConfig) calculateInterval(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}

	var interval time.Duration

	switch c.Strategy {
	case BackoffLinear:
		interval = c.BaseInterval * time.Duration(attempts)
	case BackoffConstant:
		interval = c.BaseInterval
	default:
		// attempts 1 -> 1x, attempts 2 -> 2x, attempts 3 -> 4x, etc.
		multiplier := math.Pow(2, float64(attempts-1))
		interval = time.Duration(float64(c.BaseInterval) * multiplier)
	}

	if c.MaxInterval > 0 && interval > c.MaxInterval {
		interval = c.MaxInterval
	}
	return interval
}

// applyJitter spreads the interval over [1-jitter, 1+jitter].
func (c *BackoffConfig) applyJitter(interval time.Duration) time.Duration {
	jitter := c.Jitter
	if jitter > 1 {
		jitter = 1
	}
	jitterRange := float64(interval) * jitter
	jitterValue := (rand.Float64()*2 - 1) * jitterRange
	return time.Duration(float64(interval) + jitterValue)
}

// Do runs op and retries it while it fails with a retryable error, waiting
// between attempts. A nil config runs op once. The last error is returned.
// onRetry, if set, is called before each wait.
func Do(ctx context.Context, cfg *BackoffConfig, op func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	retries := 0
	if cfg != nil {
		retries = cfg.MaxRetries
	}

	var err error
	for attempt := 0; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= retries || !sdkerrors.IsRetryable(err) {
			return err
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}

		timer := time.NewTimer(cfg.Delay(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
