package repository

import (
	"context"

	"github.com/akinalp/opsdesk/models"
)

// MessageRepository, mesaj verisine erişim sözleşmesi.
//
// Create, kanal içi seq değerini tek bir transaction içinde atar:
// aynı kanala eşzamanlı yazan iki goroutine asla aynı seq'i alamaz,
// listeleme her zaman seq'e göre deterministik sıralanır.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)

	// GetByChannelID, seq DESC sıralı sayfa döner. beforeSeq > 0 ise yalnızca
	// seq < beforeSeq olan mesajlar gelir (cursor tabanlı sayfalama).
	GetByChannelID(ctx context.Context, channelID string, limit int, beforeSeq int64) ([]models.Message, error)

	// GetLatestByChannelIDs, kanal listesi önizlemesi için her kanalın
	// son mesajını tek sorguda toplar.
	GetLatestByChannelIDs(ctx context.Context, channelIDs []string) (map[string]*models.Message, error)

	// Search, içerikte büyük/küçük harf duyarsız arama yapar.
	// channelID boş ise tüm kanallarda arar.
	Search(ctx context.Context, channelID, query string, limit int) ([]models.Message, error)

	// GetMaxSeq, kanalın son atanmış seq değerini döner (hiç mesaj yoksa 0).
	GetMaxSeq(ctx context.Context, channelID string) (int64, error)

	Delete(ctx context.Context, id string) error
}

// MessageGetter, yalnızca tekil mesaj okuyan bileşenler için dar interface.
type MessageGetter interface {
	GetByID(ctx context.Context, id string) (*models.Message, error)
}
