package repository

import (
	"context"

	"github.com/akinalp/opsdesk/models"
)

// DirectoryRepository, konsoldan senkronlanan kişi/görev/proje aynası
// üzerinde arama yapar. Bu tablolar bu servis tarafından yazılmaz;
// senkronizasyon dış sistemin işidir, biz yalnızca okuruz.
type DirectoryRepository interface {
	// SearchUsers vd., prefix öncelikli, büyük/küçük harf duyarsız arama yapar.
	// Boş sorgu ilk limit kadar kaydı döner (öneri panelinin açılış hali).
	SearchUsers(ctx context.Context, query string, limit int) ([]models.DirectoryUser, error)
	SearchTasks(ctx context.Context, query string, limit int) ([]models.DirectoryTask, error)
	SearchProjects(ctx context.Context, query string, limit int) ([]models.DirectoryProject, error)

	// LookupByDisplayName, tam ad eşleşmesi arar (büyük/küçük harf duyarsız).
	// Birden fazla kayıt dönebilir; belirsizliği çağıran çözer.
	LookupByDisplayName(ctx context.Context, kind models.MentionKind, name string) ([]models.Suggestion, error)

	GetUserByID(ctx context.Context, id string) (*models.DirectoryUser, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.DirectoryUser, error)
}
