package repository

import (
	"context"

	"github.com/akinalp/opsdesk/models"
)

// MentionRepository, mesajlara bağlı mention kayıtlarını yönetir.
// Mention'lar mesajla birlikte yazılır, mesaj silinince FK ile gider.
type MentionRepository interface {
	SaveMentions(ctx context.Context, messageID string, mentions []models.Mention) error
	GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.Mention, error)
}
