package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", 1)

	val, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, val)

	_, ok = c.Get("yok")
	assert.False(t, ok)
}

func TestTTLCacheExpiry(t *testing.T) {
	c := New[string, string](20*time.Millisecond, time.Minute)
	defer c.Close()

	c.Set("a", "değer")

	_, ok := c.Get("a")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	// Süresi dolan entry miss'tir — fiziksel silme cleanup'a kalsa bile
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheSetRefreshesTTL(t *testing.T) {
	c := New[string, int](50*time.Millisecond, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	time.Sleep(30 * time.Millisecond)
	c.Set("a", 2)
	time.Sleep(30 * time.Millisecond)

	// İkinci Set yeni TTL başlattı — toplam 60ms geçse de entry taze
	val, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, val)
}

func TestTTLCacheDelete(t *testing.T) {
	c := New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheDeleteFunc(t *testing.T) {
	c := New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("user:jo", 1)
	c.Set("user:an", 2)
	c.Set("task:de", 3)

	c.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, "user:")
	})

	_, ok := c.Get("user:jo")
	assert.False(t, ok)
	_, ok = c.Get("user:an")
	assert.False(t, ok)

	val, ok := c.Get("task:de")
	require.True(t, ok)
	assert.Equal(t, 3, val)
}

func TestTTLCacheClear(t *testing.T) {
	c := New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	assert.Zero(t, c.Len())
}

func TestTTLCacheBackgroundEviction(t *testing.T) {
	c := New[string, int](10*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	c.Set("a", 1)

	// Cleanup tick'i süresi dolan entry'yi map'ten fiziksel olarak siler
	require.Eventually(t, func() bool {
		return c.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
