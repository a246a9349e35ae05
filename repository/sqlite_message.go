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

type sqliteMessageRepo struct {
	db *sql.DB
}

func NewSQLiteMessageRepo(db *sql.DB) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

// Create, seq atamasını ve insert'i aynı transaction'da yapar.
// COALESCE(MAX(seq),0)+1 deseni WAL modunda tek yazar garantisiyle çalışır:
// transaction commit olana kadar başka yazar aynı kanala giremez.
func (r *sqliteMessageRepo) Create(ctx context.Context, message *models.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	message.ID = uuid.NewString()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE channel_id = ?`,
		message.ChannelID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	query := `
		INSERT INTO messages (id, channel_id, author_id, content, type, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err = tx.QueryRowContext(ctx, query,
		message.ID, message.ChannelID, message.AuthorID,
		message.Content, message.Type, seq,
	).Scan(&message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	message.Seq = seq

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}

	return nil
}

func (r *sqliteMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, channel_id, author_id, content, type, seq, created_at
		FROM messages WHERE id = ?`

	msg := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.ChannelID, &msg.AuthorID, &msg.Content,
		&msg.Type, &msg.Seq, &msg.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message by id: %w", err)
	}

	return msg, nil
}

func (r *sqliteMessageRepo) GetByChannelID(ctx context.Context, channelID string, limit int, beforeSeq int64) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, channel_id, author_id, content, type, seq, created_at
		FROM messages
		WHERE channel_id = ?`
	args := []any{channelID}

	if beforeSeq > 0 {
		query += ` AND seq < ?`
		args = append(args, beforeSeq)
	}

	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *sqliteMessageRepo) GetLatestByChannelIDs(ctx context.Context, channelIDs []string) (map[string]*models.Message, error) {
	result := make(map[string]*models.Message)
	if len(channelIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(channelIDs))
	placeholders = placeholders[:len(placeholders)-1]

	// Her kanal için MAX(seq) satırını window fonksiyonu olmadan,
	// correlated subquery ile seçiyoruz (SQLite'ta yeterince hızlı).
	query := fmt.Sprintf(`
		SELECT m.id, m.channel_id, m.author_id, m.content, m.type, m.seq, m.created_at
		FROM messages m
		WHERE m.channel_id IN (%s)
		  AND m.seq = (SELECT MAX(seq) FROM messages WHERE channel_id = m.channel_id)`,
		placeholders)

	args := make([]any, len(channelIDs))
	for i, id := range channelIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest messages: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	for i := range msgs {
		m := msgs[i]
		result[m.ChannelID] = &m
	}

	return result, nil
}

func (r *sqliteMessageRepo) Search(ctx context.Context, channelID, query string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	sqlQuery := `
		SELECT id, channel_id, author_id, content, type, seq, created_at
		FROM messages
		WHERE content LIKE ? ESCAPE '\'`
	args := []any{"%" + escapeLike(query) + "%"}

	if channelID != "" {
		sqlQuery += ` AND channel_id = ?`
		args = append(args, channelID)
	}

	sqlQuery += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *sqliteMessageRepo) GetMaxSeq(ctx context.Context, channelID string) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE channel_id = ?`,
		channelID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to get max seq: %w", err)
	}
	return seq, nil
}

func (r *sqliteMessageRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID, &msg.ChannelID, &msg.AuthorID, &msg.Content,
			&msg.Type, &msg.Seq, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// escapeLike, LIKE sorgusunda kullanıcı girdisindeki joker karakterleri etkisiz kılar.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
