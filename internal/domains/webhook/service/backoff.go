package service

import (
	"math/rand"
	"time"
)

// NextRetryDelay returns the delay before retry attempt n (1-based).
//
// Production schedule doubles from 2 minutes: 2, 4, 8, 16, 32 minutes,
// with 10% jitter so a burst of failures does not retry in lockstep.
// The test schedule is 2^n seconds without jitter, keeping integration
// runs fast and deterministic.
func NextRetryDelay(attempt int, testIntervals bool) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := time.Duration(1<<uint(attempt)) * time.Second
	if testIntervals {
		return base
	}

	delay := base * 60
	jitter := time.Duration(rand.Int63n(int64(delay) / 5))
	return delay - delay/10 + jitter
}
