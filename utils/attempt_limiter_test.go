package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// The limiter tests never call InitRedis, so GetRedis returns nil and the
// in-memory path is exercised.

func TestAttemptLimiterBlocksAfterBudget(t *testing.T) {
	l := NewAttemptLimiter(3, 15)
	base := time.Unix(1700000000, 0)
	l.now = func() time.Time { return base }

	assert.False(t, l.Blocked("1.2.3.4", "abc"))
	l.RecordFailure("1.2.3.4", "abc")
	l.RecordFailure("1.2.3.4", "abc")
	assert.False(t, l.Blocked("1.2.3.4", "abc"))

	l.RecordFailure("1.2.3.4", "abc")
	assert.True(t, l.Blocked("1.2.3.4", "abc"))
}

func TestAttemptLimiterPairsAreIndependent(t *testing.T) {
	l := NewAttemptLimiter(1, 15)

	l.RecordFailure("1.2.3.4", "aaa")
	assert.True(t, l.Blocked("1.2.3.4", "aaa"))
	assert.False(t, l.Blocked("1.2.3.4", "bbb"))
	assert.False(t, l.Blocked("5.6.7.8", "aaa"))
}

func TestAttemptLimiterBanExpires(t *testing.T) {
	l := NewAttemptLimiter(1, 15)
	base := time.Unix(1700000000, 0)
	now := base
	l.now = func() time.Time { return now }

	l.RecordFailure("1.2.3.4", "abc")
	assert.True(t, l.Blocked("1.2.3.4", "abc"))

	now = base.Add(15*time.Minute + time.Second)
	assert.False(t, l.Blocked("1.2.3.4", "abc"))
}

func TestAttemptLimiterWindowResets(t *testing.T) {
	l := NewAttemptLimiter(3, 15)
	base := time.Unix(1700000000, 0)
	now := base
	l.now = func() time.Time { return now }

	l.RecordFailure("1.2.3.4", "abc")
	l.RecordFailure("1.2.3.4", "abc")

	// A fresh hour starts the count over.
	now = base.Add(time.Hour + time.Second)
	l.RecordFailure("1.2.3.4", "abc")
	assert.False(t, l.Blocked("1.2.3.4", "abc"))

	l.RecordFailure("1.2.3.4", "abc")
	l.RecordFailure("1.2.3.4", "abc")
	assert.True(t, l.Blocked("1.2.3.4", "abc"))
}

func TestAttemptLimiterResetClearsBanAndCount(t *testing.T) {
	l := NewAttemptLimiter(2, 15)

	l.RecordFailure("1.2.3.4", "abc")
	l.RecordFailure("1.2.3.4", "abc")
	assert.True(t, l.Blocked("1.2.3.4", "abc"))

	l.Reset("1.2.3.4", "abc")
	assert.False(t, l.Blocked("1.2.3.4", "abc"))

	// Budget starts from zero again.
	l.RecordFailure("1.2.3.4", "abc")
	assert.False(t, l.Blocked("1.2.3.4", "abc"))
}

func TestAttemptLimiterDefaults(t *testing.T) {
	l := NewAttemptLimiter(0, 0)
	assert.Equal(t, 10, l.maxPerHour)
	assert.Equal(t, 15*time.Minute, l.ban)
}
