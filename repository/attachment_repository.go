package repository

import (
	"context"

	"github.com/akinalp/opsdesk/models"
)

// AttachmentRepository, dosya eklerinin yaşam döngüsünü yönetir.
//
// Yükleme akışı iki aşamalıdır: dosya önce message_id NULL olarak
// "beklemede" kaydedilir, mesaj oluşturulurken Claim ile mesaja bağlanır.
// Beklemedeki ekler hiçbir listede görünmez.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id string) (*models.Attachment, error)

	// Claim, beklemedeki ekleri verilen mesaja bağlar. Eklerden herhangi biri
	// yoksa ya da zaten başka bir mesaja bağlıysa pkg.ErrUploadFailure döner
	// ve hiçbir ek bağlanmaz.
	Claim(ctx context.Context, messageID string, attachmentIDs []string) error

	GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.Attachment, error)
}
