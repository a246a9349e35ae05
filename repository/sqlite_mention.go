package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/akinalp/opsdesk/models"
)

type sqliteMentionRepo struct {
	db *sql.DB
}

func NewSQLiteMentionRepo(db *sql.DB) MentionRepository {
	return &sqliteMentionRepo{db: db}
}

func (r *sqliteMentionRepo) SaveMentions(ctx context.Context, messageID string, mentions []models.Mention) error {
	if len(mentions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mentions (id, message_id, kind, target_id, display_name, start_index, end_index)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare mention insert: %w", err)
	}
	defer stmt.Close()

	for i := range mentions {
		m := &mentions[i]
		m.ID = uuid.NewString()
		m.MessageID = messageID
		if _, err := stmt.ExecContext(ctx,
			m.ID, messageID, m.Kind, m.TargetID, m.DisplayName,
			m.StartIndex, m.EndIndex,
		); err != nil {
			return fmt.Errorf("failed to insert mention: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mentions: %w", err)
	}

	return nil
}

func (r *sqliteMentionRepo) GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.Mention, error) {
	result := make(map[string][]models.Mention)
	if len(messageIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(messageIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT id, message_id, kind, target_id, display_name, start_index, end_index
		FROM mentions
		WHERE message_id IN (%s)
		ORDER BY start_index ASC`, placeholders)

	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get mentions by message ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Mention
		if err := rows.Scan(
			&m.ID, &m.MessageID, &m.Kind, &m.TargetID, &m.DisplayName,
			&m.StartIndex, &m.EndIndex,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mention row: %w", err)
		}
		result[m.MessageID] = append(result[m.MessageID], m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mention rows: %w", err)
	}

	return result, nil
}
