// Package backoff computes how long a peer waits for the next datagram. Every silent wait grows the
// timeout by a fixed multiplier up to a ceiling; any received datagram snaps it back to the initial value.
package backoff

import (
	"time"

	cbackoff "github.com/cenkalti/backoff/v4"
)

// Timer is not safe for concurrent use; it belongs to a single receive loop.
type Timer struct {
	initial time.Duration
	max     time.Duration
	policy  *cbackoff.ExponentialBackOff
	current time.Duration
}

// NewTimer returns a timer sitting at initial. A max below initial is raised to initial and a
// multiplier below 1 is treated as 1, so the current timeout always stays within [initial, max].
func NewTimer(initial, max time.Duration, multiplier float64) *Timer {
	if max < initial {
		max = initial
	}
	if multiplier < 1 {
		multiplier = 1
	}
	t := &Timer{
		initial: initial,
		max:     max,
		policy: &cbackoff.ExponentialBackOff{
			InitialInterval:     initial,
			RandomizationFactor: 0,
			Multiplier:          multiplier,
			MaxInterval:         max,
			MaxElapsedTime:      0, // never give up
			Stop:                cbackoff.Stop,
			Clock:               cbackoff.SystemClock,
		},
	}
	t.Success()
	return t
}

// Current is the timeout to use for the next receive attempt.
func (t *Timer) Current() time.Duration {
	return t.current
}

// Timeout records a wait that ended without a datagram and returns the grown timeout.
func (t *Timer) Timeout() time.Duration {
	t.current = t.policy.NextBackOff()
	return t.current
}

// Success records a received datagram and returns the timeout to its initial value.
func (t *Timer) Success() time.Duration {
	t.policy.Reset()
	// The first interval handed out after a reset is the initial one; consume it so the next
	// Timeout call already yields initial*multiplier.
	t.current = t.policy.NextBackOff()
	return t.current
}

func (t *Timer) Initial() time.Duration { return t.initial }

func (t *Timer) Max() time.Duration { return t.max }
