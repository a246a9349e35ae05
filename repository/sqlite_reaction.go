package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/akinalp/opsdesk/models"
)

type sqliteReactionRepo struct {
	db *sql.DB
}

func NewSQLiteReactionRepo(db *sql.DB) ReactionRepository {
	return &sqliteReactionRepo{db: db}
}

// Add, UNIQUE(message_id, user_id, emoji) kısıtına yaslanır:
// INSERT OR IGNORE çakışmada satır yazmaz, RowsAffected 0 döner.
func (r *sqliteReactionRepo) Add(ctx context.Context, reaction *models.Reaction) (bool, error) {
	reaction.ID = uuid.NewString()

	result, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO reactions (id, message_id, user_id, emoji)
		VALUES (?, ?, ?, ?)`,
		reaction.ID, reaction.MessageID, reaction.UserID, reaction.Emoji,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add reaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *sqliteReactionRepo) Remove(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM reactions WHERE message_id = ? AND user_id = ? AND emoji = ?`,
		messageID, userID, emoji,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *sqliteReactionRepo) GetByMessageID(ctx context.Context, messageID string) ([]models.ReactionGroup, error) {
	grouped, err := r.GetByMessageIDs(ctx, []string{messageID})
	if err != nil {
		return nil, err
	}
	groups := grouped[messageID]
	if groups == nil {
		groups = []models.ReactionGroup{}
	}
	return groups, nil
}

// GetByMessageIDs, ham satırları emoji bazında gruplar. Sıralama
// deterministiktir: önce ilk eklenme zamanı, sonra emoji.
func (r *sqliteReactionRepo) GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.ReactionGroup, error) {
	result := make(map[string][]models.ReactionGroup)
	if len(messageIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(messageIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT message_id, user_id, emoji
		FROM reactions
		WHERE message_id IN (%s)
		ORDER BY created_at ASC, id ASC`, placeholders)

	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	defer rows.Close()

	// mesaj -> emoji -> grup indexi; ekleme sırası korunur.
	type groupKey struct{ messageID, emoji string }
	indexes := make(map[groupKey]int)

	for rows.Next() {
		var messageID, userID, emoji string
		if err := rows.Scan(&messageID, &userID, &emoji); err != nil {
			return nil, fmt.Errorf("failed to scan reaction row: %w", err)
		}

		key := groupKey{messageID, emoji}
		idx, ok := indexes[key]
		if !ok {
			result[messageID] = append(result[messageID], models.ReactionGroup{Emoji: emoji})
			idx = len(result[messageID]) - 1
			indexes[key] = idx
		}

		group := &result[messageID][idx]
		group.Count++
		group.Users = append(group.Users, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction rows: %w", err)
	}

	return result, nil
}
