package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/pkg/cache"
	"github.com/akinalp/opsdesk/repository"
)

const (
	// suggestLimit, tek bir öneri sorgusunun döndürdüğü maksimum kayıt.
	// Console paneli zaten en fazla 8 satır gösterir.
	suggestLimit = 8

	// Arama sonuçları kısa süre cache'lenir: kullanıcı yazarken aynı
	// prefix'ler tekrar tekrar sorgulanır, directory ise nadiren değişir.
	suggestCacheTTL     = 10 * time.Second
	suggestCacheCleanup = time.Minute
)

// SuggestService, mention öneri araması iş mantığı interface'i.
//
// mention.Directory ve mention.Lookup interface'lerini implicit karşılar —
// Suggester ve Resolver doğrudan bu servise bağlanır.
type SuggestService interface {
	Search(ctx context.Context, kind models.MentionKind, query string) ([]models.Suggestion, error)
	LookupByDisplayName(ctx context.Context, kind models.MentionKind, displayName string) ([]models.Suggestion, error)

	// InvalidateKind, directory senkronizasyonu sonrası bir türün
	// cache'lenmiş sonuçlarını düşürür.
	InvalidateKind(kind models.MentionKind)

	// Close, cache goroutine'ini durdurur (graceful shutdown).
	Close()
}

type suggestService struct {
	directoryRepo repository.DirectoryRepository
	results       *cache.TTLCache[string, []models.Suggestion]
}

// NewSuggestService, constructor.
func NewSuggestService(directoryRepo repository.DirectoryRepository) SuggestService {
	return &suggestService{
		directoryRepo: directoryRepo,
		results:       cache.New[string, []models.Suggestion](suggestCacheTTL, suggestCacheCleanup),
	}
}

// Search, prefix öncelikli, büyük/küçük harf duyarsız öneri araması yapar.
// Boş query geçerlidir — panelin açılış hali ilk N kaydı gösterir.
func (s *suggestService) Search(ctx context.Context, kind models.MentionKind, query string) ([]models.Suggestion, error) {
	query = strings.TrimSpace(query)
	cacheKey := string(kind) + ":" + strings.ToLower(query)

	if cached, ok := s.results.Get(cacheKey); ok {
		return cached, nil
	}

	var suggestions []models.Suggestion

	switch kind {
	case models.MentionUser:
		users, err := s.directoryRepo.SearchUsers(ctx, query, suggestLimit)
		if err != nil {
			return nil, err
		}
		suggestions = make([]models.Suggestion, 0, len(users))
		for _, u := range users {
			suggestions = append(suggestions, repository.UserSuggestion(u))
		}

	case models.MentionTask:
		tasks, err := s.directoryRepo.SearchTasks(ctx, query, suggestLimit)
		if err != nil {
			return nil, err
		}
		suggestions = make([]models.Suggestion, 0, len(tasks))
		for _, t := range tasks {
			suggestions = append(suggestions, repository.TaskSuggestion(t))
		}

	case models.MentionProject:
		projects, err := s.directoryRepo.SearchProjects(ctx, query, suggestLimit)
		if err != nil {
			return nil, err
		}
		suggestions = make([]models.Suggestion, 0, len(projects))
		for _, p := range projects {
			suggestions = append(suggestions, repository.ProjectSuggestion(p))
		}

	default:
		return nil, fmt.Errorf("%w: unknown suggestion kind %q", pkg.ErrBadRequest, kind)
	}

	s.results.Set(cacheKey, suggestions)
	return suggestions, nil
}

// LookupByDisplayName, tam ad eşleşmesi arar. Cache'lenmez — gönderim
// yolundadır, bayat id'yle mention yazmak cache kazancına değmez.
func (s *suggestService) LookupByDisplayName(ctx context.Context, kind models.MentionKind, displayName string) ([]models.Suggestion, error) {
	return s.directoryRepo.LookupByDisplayName(ctx, kind, displayName)
}

func (s *suggestService) InvalidateKind(kind models.MentionKind) {
	prefix := string(kind) + ":"
	s.results.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (s *suggestService) Close() {
	s.results.Close()
}
