package repository

import (
	"context"

	"github.com/akinalp/opsdesk/models"
)

// ChannelRepository, kanal veritabanı işlemleri için interface.
// Her method context.Context alır — HTTP isteği iptal edilirse sorgu da durur.
type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	GetAll(ctx context.Context) ([]models.Channel, error)
	// Update, sadece name/description/participants alanlarını yazar.
	// Type kolonuna dokunmaz — tür değişmezliği şemada da korunur.
	Update(ctx context.Context, channel *models.Channel) error
	// Delete, kanalı siler; mesajlar, mention'lar, reaction'lar,
	// attachment'lar ve read state'ler FK cascade ile birlikte silinir.
	Delete(ctx context.Context, id string) error
}
