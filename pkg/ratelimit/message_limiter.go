// Package ratelimit — MessageRateLimiter: mesaj spam koruması için
// kullanıcı bazlı rate limiting.
//
// Tasarım:
// - 5 saniye window içinde 5 mesaj → izin verilir.
// - 6. mesajda cooldown başlar → cooldown süresi boyunca tüm mesajlar reddedilir.
// - Cooldown bitince window sıfırlanır, kullanıcı tekrar mesaj atabilir.
//
// Neden in-memory?
// - SQLite'a her request'te yazma gereksiz I/O + contention yaratır.
// - Tek instance deploy'da Redis bağımlılığı eklemeye gerek yok.
// - sync.RWMutex ile thread-safe: RLock okuma, Lock yazma.
//
// Neden ayrı paket?
// handlers ↔ middleware arasında import cycle oluşmaması için
// rate limiter bağımsız bir leaf paket olarak konumlandırıldı.
package ratelimit

import (
	"sync"
	"time"
)

// messageBucket, bir kullanıcı için mesaj sayacı ve cooldown bilgisi tutar.
//
// İki durumlu:
// 1. Normal mod: count artırılır, windowStart bazlı pencere kontrolü.
// 2. Cooldown mod: cooldownUntil > now → tüm mesajlar reddedilir.
type messageBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// MessageRateLimiter, kullanıcı bazlı mesaj spam koruması.
//
// maxMessages: Bir window içinde izin verilen maksimum mesaj sayısı.
// window: Sayaç pencere süresi (örn: 5 saniye).
// cooldown: Limit aşıldığında uygulanan ceza süresi (örn: 15 saniye).
//
// Kullanım:
//
//	limiter := NewMessageRateLimiter(5, 5*time.Second, 15*time.Second)
//	// Message handler'da:
//	if !limiter.Allow(userID) { return 429 }
type MessageRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*messageBucket
	maxMessages int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewMessageRateLimiter, yeni mesaj rate limiter oluşturur ve arka plan
// temizleme goroutine'ini başlatır.
func NewMessageRateLimiter(maxMessages int, window, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets:     make(map[string]*messageBucket),
		maxMessages: maxMessages,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	// Mesaj bucket'ları kısa ömürlü (window + cooldown = max ~20sn),
	// ama çok sayıda kullanıcıda bellek birikmesini önlemek için cleanup gerekli.
	go rl.cleanupLoop()

	return rl
}

// Allow, verilen kullanıcının mesaj göndermesine izin verilip verilmediğini
// kontrol eder.
//
// Akış:
// 1. Cooldown'daysa → reject (cooldown bitmeden hiçbir mesaj geçmez).
// 2. Window dolmuşsa → yeni pencere başlat.
// 3. Window içindeyse → count artır, max aşıldıysa cooldown başlat.
func (rl *MessageRateLimiter) Allow(userID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[userID]
	if !exists {
		rl.buckets[userID] = &messageBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		return false
	}

	if !b.cooldownUntil.IsZero() {
		// Cooldown bitti — yeni pencere başlat
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxMessages {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}

	return true
}

// CooldownSeconds, rate limit aşıldığında kalan cooldown süresini saniye
// cinsinden döner. HTTP Retry-After header değeri olarak kullanılır.
func (rl *MessageRateLimiter) CooldownSeconds(userID string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[userID]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := time.Until(b.cooldownUntil)
	if remaining <= 0 {
		return 0
	}

	// +1 yuvarlama — client'ın tam süreyi beklemesi için
	return int(remaining.Seconds()) + 1
}

// Close, temizleme goroutine'ini durdurur.
func (rl *MessageRateLimiter) Close() {
	close(rl.stopCleanup)
}

func (rl *MessageRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// Silme koşulu: hem window süresi geçmiş hem cooldown bitmiş.
// Bu, cooldown'daki kullanıcıların bucket'ını yanlışlıkla silmeyi önler.
func (rl *MessageRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)

		if windowExpired && cooldownExpired {
			delete(rl.buckets, userID)
		}
	}
}
