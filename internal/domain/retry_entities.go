// Package domain defines the retry policy used by the completion client.
package domain

import (
	"time"
)

const (
	// DefaultMaxAttempts is the initial call plus two retries.
	DefaultMaxAttempts = 3
	// DefaultBackoffBase is the unit multiplied by 2^n before retry n.
	DefaultBackoffBase = time.Second
)

// RetryPolicy bounds the completion retry loop.
type RetryPolicy struct {
	// MaxAttempts counts every attempt, including the first.
	MaxAttempts int
	// Base is the delay unit; the wait after failed attempt k (0-based) is 2^k * Base.
	Base time.Duration
}

// DefaultRetryPolicy returns three attempts with 1s then 2s waits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Base: DefaultBackoffBase}
}

// Delay returns the wait before retry n (n >= 1). Retry n follows failed
// attempt n-1, so it waits 2^(n-1) * Base: 1s then 2s with the default base.
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return p.Base * time.Duration(1<<uint(n-1))
}

// Retries is the number of retries after the initial attempt.
func (p RetryPolicy) Retries() int {
	if p.MaxAttempts <= 1 {
		return 0
	}
	return p.MaxAttempts - 1
}

// RetryState tracks one evaluation call's attempts. It never outlives the call.
type RetryState struct {
	Attempt int
	Policy  RetryPolicy
}

// NewRetryState starts a fresh state at attempt 0.
func NewRetryState(p RetryPolicy) *RetryState { return &RetryState{Policy: p} }

// Record marks one attempt as made.
func (s *RetryState) Record() { s.Attempt++ }

// Exhausted reports whether no attempts remain.
func (s *RetryState) Exhausted() bool { return s.Attempt >= s.Policy.MaxAttempts }

// NextDelay is the wait before the next attempt, or 0 before the first one.
func (s *RetryState) NextDelay() time.Duration { return s.Policy.Delay(s.Attempt) }
