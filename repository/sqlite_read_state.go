package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/opsdesk/models"
)

type sqliteReadStateRepo struct {
	db *sql.DB
}

func NewSQLiteReadStateRepo(db *sql.DB) ReadStateRepository {
	return &sqliteReadStateRepo{db: db}
}

// Upsert, MAX(last_read_seq, yeni seq) ile imleci asla geri sarmaz.
func (r *sqliteReadStateRepo) Upsert(ctx context.Context, state *models.ReadState) error {
	query := `
		INSERT INTO read_states (user_id, channel_id, last_read_seq, last_read_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, channel_id) DO UPDATE SET
			last_read_seq = MAX(last_read_seq, excluded.last_read_seq),
			last_read_at = excluded.last_read_at`

	if _, err := r.db.ExecContext(ctx, query,
		state.UserID, state.ChannelID, state.LastReadSeq,
	); err != nil {
		return fmt.Errorf("failed to upsert read state: %w", err)
	}

	return nil
}

func (r *sqliteReadStateRepo) Get(ctx context.Context, userID, channelID string) (*models.ReadState, error) {
	query := `
		SELECT user_id, channel_id, last_read_seq, last_read_at
		FROM read_states WHERE user_id = ? AND channel_id = ?`

	state := &models.ReadState{}
	err := r.db.QueryRowContext(ctx, query, userID, channelID).Scan(
		&state.UserID, &state.ChannelID, &state.LastReadSeq, &state.LastReadAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Hiç okuma kaydı yoksa imleç sıfırdadır.
		return &models.ReadState{UserID: userID, ChannelID: channelID, LastReadSeq: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get read state: %w", err)
	}

	return state, nil
}

func (r *sqliteReadStateRepo) GetUnreadCounts(ctx context.Context, userID string) (map[string]int, error) {
	// LEFT JOIN: okuma kaydı olmayan kanalda tüm mesajlar okunmamıştır.
	// Kullanıcının kendi yazdıkları sayılmaz — kendi mesajın okunmamış olamaz.
	query := `
		SELECT m.channel_id, COUNT(*)
		FROM messages m
		LEFT JOIN read_states rs
			ON rs.channel_id = m.channel_id AND rs.user_id = ?
		WHERE m.seq > COALESCE(rs.last_read_seq, 0)
		  AND m.author_id != ?
		GROUP BY m.channel_id`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var channelID string
		var count int
		if err := rows.Scan(&channelID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unread row: %w", err)
		}
		counts[channelID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unread rows: %w", err)
	}

	return counts, nil
}
