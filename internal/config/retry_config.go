// Package config defines retry configuration for the completion client.
package config

import (
	"time"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

// GetRetryPolicy returns the completion retry policy. In test environments the
// base delay is shortened so suites don't sit through real backoff waits.
func (c Config) GetRetryPolicy() domain.RetryPolicy {
	p := domain.RetryPolicy{MaxAttempts: c.RetryMaxAttempts, Base: c.RetryBaseDelay}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = domain.DefaultMaxAttempts
	}
	if p.Base <= 0 {
		p.Base = domain.DefaultBackoffBase
	}
	if c.IsTest() {
		p.Base = 10 * time.Millisecond
	}
	return p
}
