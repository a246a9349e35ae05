package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageLimiterAllowsWithinWindow(t *testing.T) {
	rl := NewMessageRateLimiter(5, time.Second, 10*time.Second)
	defer rl.Close()

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("u1"), "message %d should pass", i+1)
	}
}

func TestMessageLimiterStartsCooldownOverLimit(t *testing.T) {
	rl := NewMessageRateLimiter(3, time.Second, 10*time.Second)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("u1"))
	}

	// Limitin üstü → cooldown başlar, sonraki her istek reddedilir
	assert.False(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))

	secs := rl.CooldownSeconds("u1")
	assert.Greater(t, secs, 0)
	assert.LessOrEqual(t, secs, 11)
}

func TestMessageLimiterPerUserBuckets(t *testing.T) {
	rl := NewMessageRateLimiter(2, time.Second, 10*time.Second)
	defer rl.Close()

	require.True(t, rl.Allow("u1"))
	require.True(t, rl.Allow("u1"))
	require.False(t, rl.Allow("u1"))

	// Başka kullanıcı etkilenmez
	assert.True(t, rl.Allow("u2"))
}

func TestMessageLimiterWindowReset(t *testing.T) {
	rl := NewMessageRateLimiter(2, 30*time.Millisecond, 10*time.Second)
	defer rl.Close()

	require.True(t, rl.Allow("u1"))
	require.True(t, rl.Allow("u1"))

	time.Sleep(50 * time.Millisecond)

	// Pencere doldu, sayaç sıfırdan başlar
	assert.True(t, rl.Allow("u1"))
}

func TestMessageLimiterCooldownExpiry(t *testing.T) {
	rl := NewMessageRateLimiter(1, 10*time.Millisecond, 30*time.Millisecond)
	defer rl.Close()

	require.True(t, rl.Allow("u1"))
	require.False(t, rl.Allow("u1")) // cooldown başladı

	time.Sleep(50 * time.Millisecond)

	// Cooldown bitti — yeni pencere
	assert.True(t, rl.Allow("u1"))
	assert.Zero(t, rl.CooldownSeconds("u1"))
}

func TestMessageLimiterCooldownSecondsNoBucket(t *testing.T) {
	rl := NewMessageRateLimiter(5, time.Second, 10*time.Second)
	defer rl.Close()

	assert.Zero(t, rl.CooldownSeconds("bilinmeyen"))
}
