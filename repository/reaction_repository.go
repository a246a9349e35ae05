package repository

import (
	"context"

	"github.com/akinalp/opsdesk/models"
)

// ReactionRepository, emoji tepkilerinin kalıcı katmanı.
//
// Add idempotenttir: aynı (message, user, emoji) üçlüsü ikinci kez
// eklendiğinde hata dönmez, sayaç değişmez. Remove de öyle — olmayan
// tepkiyi silmek sessizce başarılı sayılır.
type ReactionRepository interface {
	// Add, tepkiyi ekler. changed=false üçlü zaten vardı demektir.
	Add(ctx context.Context, reaction *models.Reaction) (changed bool, err error)

	// Remove, tepkiyi siler. changed=false üçlü zaten yoktu demektir.
	Remove(ctx context.Context, messageID, userID, emoji string) (changed bool, err error)

	GetByMessageID(ctx context.Context, messageID string) ([]models.ReactionGroup, error)
	GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.ReactionGroup, error)
}
