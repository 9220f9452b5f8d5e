package hub

import "time"

// RetryPolicy decides the delay before reconnect attempt number attempt
// (0-based). ok=false means give up: the connection is unrecoverable.
type RetryPolicy interface {
	NextDelay(attempt int) (delay time.Duration, ok bool)
}

// RetryPolicyFunc adapts a function to a RetryPolicy.
type RetryPolicyFunc func(attempt int) (time.Duration, bool)

func (f RetryPolicyFunc) NextDelay(attempt int) (time.Duration, bool) {
	return f(attempt)
}

// StepRetryPolicy is the production policy: attempt 0 retries immediately,
// attempts 1-9 wait ShortDelay, 10-19 MediumDelay, 20-29 LongDelay, and
// everything from MaxAttempts on gives up. The ceiling keeps total backoff
// bounded while still riding out deploys and load-balancer failover.
type StepRetryPolicy struct {
	ShortDelay  time.Duration
	MediumDelay time.Duration
	LongDelay   time.Duration
	MaxAttempts int
}

func NewStepRetryPolicy() *StepRetryPolicy {
	return &StepRetryPolicy{
		ShortDelay:  1 * time.Second,
		MediumDelay: 2 * time.Second,
		LongDelay:   5 * time.Second,
		MaxAttempts: 30,
	}
}

func (p *StepRetryPolicy) NextDelay(attempt int) (time.Duration, bool) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	switch {
	case attempt < 0 || attempt >= maxAttempts:
		return 0, false
	case attempt == 0:
		return 0, true
	case attempt < 10:
		return p.ShortDelay, true
	case attempt < 20:
		return p.MediumDelay, true
	default:
		return p.LongDelay, true
	}
}
