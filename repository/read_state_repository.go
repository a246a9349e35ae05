package repository

import (
	"context"

	"github.com/akinalp/opsdesk/models"
)

// ReadStateRepository, kullanıcı x kanal okuma imlecini (watermark) yönetir.
// Okunmamış sayısı ayrı bir sayaç olarak tutulmaz; her zaman
// MAX(seq) - last_read_seq olarak türetilir. Böylece sayaç sapması imkansızdır.
type ReadStateRepository interface {
	// Upsert, imleci yalnızca ileri taşır: verilen seq mevcut değerden
	// küçükse kayıt değişmez (geriye okuma işareti anlamsızdır).
	Upsert(ctx context.Context, state *models.ReadState) error

	Get(ctx context.Context, userID, channelID string) (*models.ReadState, error)

	// GetUnreadCounts, kullanıcının tüm kanallardaki okunmamış sayısını
	// tek sorguda türetir. Haritada olmayan kanal sıfır okunmamış demektir.
	GetUnreadCounts(ctx context.Context, userID string) (map[string]int, error)
}
