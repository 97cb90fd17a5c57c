package real

import (
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

// policyBackOff adapts a domain.RetryPolicy to backoff.BackOff: retry n waits
// policy.Delay(n) and the sequence stops after policy.Retries() retries.
type policyBackOff struct {
	policy domain.RetryPolicy
	retry  int
}

func newPolicyBackOff(p domain.RetryPolicy) *policyBackOff {
	return &policyBackOff{policy: p}
}

func (b *policyBackOff) NextBackOff() time.Duration {
	if b.retry >= b.policy.Retries() {
		return backoff.Stop
	}
	b.retry++
	return b.policy.Delay(b.retry)
}

func (b *policyBackOff) Reset() { b.retry = 0 }
