package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
)

// sqliteChannelRepo, ChannelRepository interface'inin SQLite implementasyonu.
type sqliteChannelRepo struct {
	db *sql.DB
}

// NewSQLiteChannelRepo, constructor — interface döner (Dependency Inversion).
func NewSQLiteChannelRepo(db *sql.DB) ChannelRepository {
	return &sqliteChannelRepo{db: db}
}

func (r *sqliteChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	participants, err := json.Marshal(models.NormalizeParticipants(channel.Participants))
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	channel.ID = uuid.NewString()

	query := `
		INSERT INTO channels (id, name, type, description, participants, max_participants, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		channel.ID,
		channel.Name,
		channel.Type,
		channel.Description,
		string(participants),
		channel.MaxParticipants,
		channel.CreatedBy,
	).Scan(&channel.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	channel.Participants = models.NormalizeParticipants(channel.Participants)
	return nil
}

func (r *sqliteChannelRepo) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query := `
		SELECT id, name, type, description, participants, max_participants, created_by, created_at
		FROM channels WHERE id = ?`

	ch, err := scanChannel(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel by id: %w", err)
	}

	return ch, nil
}

func (r *sqliteChannelRepo) GetAll(ctx context.Context) ([]models.Channel, error) {
	query := `
		SELECT id, name, type, description, participants, max_participants, created_by, created_at
		FROM channels ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, *ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

func (r *sqliteChannelRepo) Update(ctx context.Context, channel *models.Channel) error {
	participants, err := json.Marshal(models.NormalizeParticipants(channel.Participants))
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	query := `
		UPDATE channels SET name = ?, description = ?, participants = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		channel.Name, channel.Description, string(participants), channel.ID)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrChannelNotFound
	}

	return nil
}

func (r *sqliteChannelRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrChannelNotFound
	}

	return nil
}

// rowScanner, hem *sql.Row hem *sql.Rows'u kapsayan minimal interface.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	ch := &models.Channel{}
	var participantsJSON string

	if err := row.Scan(
		&ch.ID, &ch.Name, &ch.Type, &ch.Description, &participantsJSON,
		&ch.MaxParticipants, &ch.CreatedBy, &ch.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(participantsJSON), &ch.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}
	if ch.Participants == nil {
		ch.Participants = []string{}
	}

	return ch, nil
}
