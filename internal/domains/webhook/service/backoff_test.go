package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRetryDelayTestSchedule(t *testing.T) {
	expected := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
	}

	for n, want := range expected {
		assert.Equal(t, want, NextRetryDelay(n+1, true))
	}
}

func TestNextRetryDelayProductionBounds(t *testing.T) {
	bases := []time.Duration{
		2 * time.Minute,
		4 * time.Minute,
		8 * time.Minute,
		16 * time.Minute,
		32 * time.Minute,
	}

	for n, base := range bases {
		for i := 0; i < 50; i++ {
			delay := NextRetryDelay(n+1, false)
			assert.GreaterOrEqual(t, delay, base-base/10)
			assert.LessOrEqual(t, delay, base+base/10)
		}
	}
}

func TestNextRetryDelayClampsLowAttempt(t *testing.T) {
	assert.Equal(t, NextRetryDelay(1, true), NextRetryDelay(0, true))
	assert.Equal(t, NextRetryDelay(1, true), NextRetryDelay(-3, true))
}
