package mention

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/akinalp/opsdesk/models"
)

// Directory, öneri aramasının sorguladığı dizin contract'ı.
// Somut implementasyon services.SuggestService'tir — Go'nun implicit
// interface'leri sayesinde burada import etmeden bağlanır.
type Directory interface {
	Search(ctx context.Context, kind models.MentionKind, query string) ([]models.Suggestion, error)
}

// Suggester, keystroke başına directory sorgusunu debounce eder ve
// süperseded olan in-flight aramaları iptal eder.
//
// Kurallar:
//   - Her Update önceki debounce timer'ını sıfırlar — sadece "en son" query
//     çalışır (coalesce).
//   - Query değiştiğinde in-flight arama context üzerinden iptal edilir
//     (cancel-and-replace, kuyruklama yok).
//   - Geç dönen sonuçlar generation sayacı ile elenir — stale sonuç asla
//     deliver edilmez.
type Suggester struct {
	dir     Directory
	delay   time.Duration
	deliver func(kind models.MentionKind, query string, results []models.Suggestion)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewSuggester, yeni bir Suggester oluşturur.
//
// delay: debounce süresi (ör: 200*time.Millisecond).
// deliver: güncel sonuçların teslim edildiği callback — Suggester'ın kendi
// goroutine'inden çağrılır, caller kendi senkronizasyonundan sorumludur.
func NewSuggester(dir Directory, delay time.Duration, deliver func(models.MentionKind, string, []models.Suggestion)) *Suggester {
	return &Suggester{
		dir:     dir,
		delay:   delay,
		deliver: deliver,
	}
}

// Update, query değişikliğini bildirir. Önceki bekleyen sorgu (timer'da
// veya in-flight) süperseded olur.
func (s *Suggester) Update(kind models.MentionKind, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.gen++
	gen := s.gen
	s.supersedeLocked()

	s.timer = time.AfterFunc(s.delay, func() {
		s.run(gen, kind, query)
	})
}

// Cancel, bekleyen ve in-flight aramaları iptal eder (öneri listesi
// Escape ile kapatıldığında).
func (s *Suggester) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.supersedeLocked()
}

// Close, Suggester'ı kalıcı olarak kapatır. Sonraki Update'ler no-op'tur.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.supersedeLocked()
}

// supersedeLocked, bekleyen timer'ı ve in-flight context'i iptal eder.
// s.mu tutulurken çağrılmalıdır.
func (s *Suggester) supersedeLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// run, debounce süresi dolduğunda timer goroutine'inde çalışır.
func (s *Suggester) run(gen uint64, kind models.MentionKind, query string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	results, err := s.dir.Search(ctx, kind, query)

	s.mu.Lock()
	current := !s.closed && gen == s.gen
	if current {
		s.cancel = nil
	}
	s.mu.Unlock()
	cancel()

	if !current {
		return // Süperseded — sonuç düşürülür
	}
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[mention] suggestion search failed (kind=%s query=%q): %v", kind, query, err)
		}
		return
	}

	s.deliver(kind, query, results)
}
