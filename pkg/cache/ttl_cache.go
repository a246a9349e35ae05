// Package cache — Generic in-memory TTL cache.
//
// TTLCache, belirli bir süre sonra süresi dolan kayıtları tutan
// thread-safe, generic bir cache yapısıdır.
//
// Buradaki kullanım alanı: mention önerisi aramaları. Aynı "@jo" sorgusu
// kısa aralıklarla tekrar tekrar gelir (kullanıcı yazarken her tuşta bir
// arama tetiklenir); directory tabloları ise nadiren değişir. Sonuçları
// birkaç saniye cache'lemek DB yükünü ciddi azaltır.
//
// TTL (Time To Live) nedir?
// Her cache entry'si bir "son kullanma tarihi" taşır. Bu tarih geçtikten
// sonra entry okunamaz — cache miss olur. Stale entry'ler arka planda
// periyodik olarak temizlenir.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache, generic in-memory TTL cache.
//
//	c := cache.New[string, []models.Suggestion](10*time.Second, time.Minute)
//	c.Set("user:jo", results)
//	val, ok := c.Get("user:jo")
//
// sync.RWMutex ile korunur — birden fazla goroutine aynı anda okuyabilir,
// yazma sırasında tüm erişim bloklanır.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	// Close() çağrıldığında temizleme goroutine'ini durdurur.
	stopCleanup chan struct{}
}

// New, yeni bir TTLCache oluşturur ve periyodik temizleme goroutine'ini başlatır.
//
// Her Get'te süre kontrolü yapılır (stale entry döndürülmez), ama map'ten
// fiziksel silme periyodik yapılır — cleanupInterval < ttl olmalıdır.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()

	return c
}

// Get, cache'ten bir değer okur. Key yoksa veya süresi dolmuşsa
// (zero value, false) döner. Süresi dolan entry burada silinmez —
// Get'i hızlı tutmak için RLock yeterli, silmeyi cleanup yapar.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, cache'e bir değer yazar (TTL ile).
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete, belirli bir key'i cache'ten siler.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteFunc, predicate'in true döndüğü tüm key'leri siler.
// Kullanım: directory senkronizasyonu sonrası bir türün tüm
// arama sonuçlarını invalidate etmek ("user:" ile başlayanlar gibi).
func (c *TTLCache[K, V]) DeleteFunc(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if predicate(key) {
			delete(c.entries, key)
		}
	}
}

// Clear, tüm cache'i boşaltır.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Len, cache'teki toplam entry sayısını döner (süresi dolmuşlar dahil).
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close, periyodik temizleme goroutine'ini durdurur.
// Cache artık kullanılmayacaksa çağrılmalıdır (goroutine leak önleme).
func (c *TTLCache[K, V]) Close() {
	close(c.stopCleanup)
}

func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
