package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallerLimiter_PerCallerBuckets(t *testing.T) {
	l := newCallerLimiter(0.001, 1)

	assert.True(t, l.allow("door-1"))
	assert.False(t, l.allow("door-1"))
	assert.True(t, l.allow("door-2"))
}

func TestCallerLimiter_DropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	l := newCallerLimiter(0.001, 1)
	l.now = func() time.Time { return now }

	for _, uid := range []string{"door-1", "door-2", "door-3"} {
		assert.True(t, l.allow(uid))
	}
	assert.Len(t, l.buckets, 3)

	now = now.Add(5 * time.Minute)
	assert.False(t, l.allow("door-1"))

	now = now.Add(limiterIdleTTL)
	assert.True(t, l.allow("door-4"))

	assert.Len(t, l.buckets, 2)
	assert.Contains(t, l.buckets, "door-1")
	assert.Contains(t, l.buckets, "door-4")
}
