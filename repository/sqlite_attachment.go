package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
)

type sqliteAttachmentRepo struct {
	db *sql.DB
}

func NewSQLiteAttachmentRepo(db *sql.DB) AttachmentRepository {
	return &sqliteAttachmentRepo{db: db}
}

func (r *sqliteAttachmentRepo) Create(ctx context.Context, attachment *models.Attachment) error {
	attachment.ID = uuid.NewString()
	attachment.MessageID = nil

	query := `
		INSERT INTO attachments (id, message_id, filename, file_url, mime_type, file_size, uploaded_by)
		VALUES (?, NULL, ?, ?, ?, ?, ?)
		RETURNING uploaded_at`

	err := r.db.QueryRowContext(ctx, query,
		attachment.ID, attachment.Filename, attachment.FileURL,
		attachment.MimeType, attachment.FileSize, attachment.UploadedBy,
	).Scan(&attachment.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	return nil
}

func (r *sqliteAttachmentRepo) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := `
		SELECT id, message_id, filename, file_url, mime_type, file_size, uploaded_by, uploaded_at
		FROM attachments WHERE id = ?`

	att := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&att.ID, &att.MessageID, &att.Filename, &att.FileURL,
		&att.MimeType, &att.FileSize, &att.UploadedBy, &att.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	return att, nil
}

// Claim, tüm eklerin beklemede olduğunu tek transaction içinde doğrular.
// RowsAffected istenen ek sayısından azsa en az bir ek ya yok ya da
// çoktan başka bir mesaja bağlanmış demektir; transaction geri alınır.
func (r *sqliteAttachmentRepo) Claim(ctx context.Context, messageID string, attachmentIDs []string) error {
	if len(attachmentIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.Repeat("?,", len(attachmentIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		UPDATE attachments SET message_id = ?
		WHERE id IN (%s) AND message_id IS NULL`, placeholders)

	args := make([]any, 0, len(attachmentIDs)+1)
	args = append(args, messageID)
	for _, id := range attachmentIDs {
		args = append(args, id)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to claim attachments: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected != int64(len(attachmentIDs)) {
		return fmt.Errorf("%w: %d of %d attachments could not be claimed",
			pkg.ErrUploadFailure, int64(len(attachmentIDs))-affected, len(attachmentIDs))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim: %w", err)
	}

	return nil
}

func (r *sqliteAttachmentRepo) GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.Attachment, error) {
	result := make(map[string][]models.Attachment)
	if len(messageIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(messageIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT id, message_id, filename, file_url, mime_type, file_size, uploaded_by, uploaded_at
		FROM attachments
		WHERE message_id IN (%s)
		ORDER BY uploaded_at ASC`, placeholders)

	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachments by message ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var att models.Attachment
		if err := rows.Scan(
			&att.ID, &att.MessageID, &att.Filename, &att.FileURL,
			&att.MimeType, &att.FileSize, &att.UploadedBy, &att.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment row: %w", err)
		}
		if att.MessageID != nil {
			result[*att.MessageID] = append(result[*att.MessageID], att)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachment rows: %w", err)
	}

	return result, nil
}
