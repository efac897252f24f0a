package mockapi

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(every time.Duration, burst int, now *time.Time) *loginLimiter {
	l := newLoginLimiter(every, burst)
	l.now = func() time.Time { return *now }
	return l
}

func (l *loginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func TestLoginLimiter_EvictsIdleAddresses(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	l := newTestLimiter(time.Second, 3, &now)

	for i := range 100 {
		require.True(t, l.allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, 100, l.size())

	now = now.Add(3 * time.Second)
	require.True(t, l.allow("10.0.1.1"))
	assert.Equal(t, 1, l.size(), "idle buckets are dropped on the next sweep")
}

func TestLoginLimiter_KeepsActiveAddresses(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	l := newTestLimiter(time.Second, 2, &now)

	require.True(t, l.allow("a"))
	require.True(t, l.allow("a"))
	require.False(t, l.allow("a"), "burst exhausted")

	now = now.Add(1500 * time.Millisecond)
	require.True(t, l.allow("b"))
	assert.Equal(t, 2, l.size(), "a is still within its idle window")

	now = now.Add(time.Second)
	require.True(t, l.allow("a"))
	assert.Equal(t, 2, l.size())
}

func TestLoginLimiter_Unlimited(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(0, 1, &now)
	for range 10 {
		require.True(t, l.allow("a"))
	}
	assert.Zero(t, l.size())
}
