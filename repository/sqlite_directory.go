package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
)

type sqliteDirectoryRepo struct {
	db *sql.DB
}

func NewSQLiteDirectoryRepo(db *sql.DB) DirectoryRepository {
	return &sqliteDirectoryRepo{db: db}
}

// Prefix eşleşmeleri substring eşleşmelerinden önce gelsin diye
// iki LIKE deseni birden kullanılır: sıralama anahtarı prefix mi değil mi.
func (r *sqliteDirectoryRepo) SearchUsers(ctx context.Context, query string, limit int) ([]models.DirectoryUser, error) {
	if limit <= 0 || limit > 25 {
		limit = 8
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	prefix := escapeLike(strings.ToLower(query)) + "%"

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_name, email, avatar_url, position, status
		FROM directory_users
		WHERE LOWER(display_name) LIKE ? ESCAPE '\'
		ORDER BY (LOWER(display_name) LIKE ? ESCAPE '\') DESC, display_name ASC
		LIMIT ?`,
		pattern, prefix, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []models.DirectoryUser
	for rows.Next() {
		var u models.DirectoryUser
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Email, &u.AvatarURL, &u.Position, &u.Status); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (r *sqliteDirectoryRepo) SearchTasks(ctx context.Context, query string, limit int) ([]models.DirectoryTask, error) {
	if limit <= 0 || limit > 25 {
		limit = 8
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	prefix := escapeLike(strings.ToLower(query)) + "%"

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, status, priority
		FROM directory_tasks
		WHERE LOWER(title) LIKE ? ESCAPE '\'
		ORDER BY (LOWER(title) LIKE ? ESCAPE '\') DESC, title ASC
		LIMIT ?`,
		pattern, prefix, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.DirectoryTask
	for rows.Next() {
		var t models.DirectoryTask
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

func (r *sqliteDirectoryRepo) SearchProjects(ctx context.Context, query string, limit int) ([]models.DirectoryProject, error) {
	if limit <= 0 || limit > 25 {
		limit = 8
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	prefix := escapeLike(strings.ToLower(query)) + "%"

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, status, progress
		FROM directory_projects
		WHERE LOWER(name) LIKE ? ESCAPE '\'
		ORDER BY (LOWER(name) LIKE ? ESCAPE '\') DESC, name ASC
		LIMIT ?`,
		pattern, prefix, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	defer rows.Close()

	var projects []models.DirectoryProject
	for rows.Next() {
		var p models.DirectoryProject
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Progress); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

func (r *sqliteDirectoryRepo) LookupByDisplayName(ctx context.Context, kind models.MentionKind, name string) ([]models.Suggestion, error) {
	switch kind {
	case models.MentionUser:
		users, err := r.lookupUsers(ctx, name)
		if err != nil {
			return nil, err
		}
		suggestions := make([]models.Suggestion, 0, len(users))
		for _, u := range users {
			suggestions = append(suggestions, UserSuggestion(u))
		}
		return suggestions, nil

	case models.MentionTask:
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, title, status, priority FROM directory_tasks
			WHERE LOWER(title) = LOWER(?) ORDER BY id ASC`, name)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup tasks: %w", err)
		}
		defer rows.Close()

		var suggestions []models.Suggestion
		for rows.Next() {
			var t models.DirectoryTask
			if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority); err != nil {
				return nil, fmt.Errorf("failed to scan task row: %w", err)
			}
			suggestions = append(suggestions, TaskSuggestion(t))
		}
		return suggestions, rows.Err()

	case models.MentionProject:
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, name, status, progress FROM directory_projects
			WHERE LOWER(name) = LOWER(?) ORDER BY id ASC`, name)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup projects: %w", err)
		}
		defer rows.Close()

		var suggestions []models.Suggestion
		for rows.Next() {
			var p models.DirectoryProject
			if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Progress); err != nil {
				return nil, fmt.Errorf("failed to scan project row: %w", err)
			}
			suggestions = append(suggestions, ProjectSuggestion(p))
		}
		return suggestions, rows.Err()

	default:
		return nil, fmt.Errorf("%w: unknown mention kind %q", pkg.ErrBadRequest, kind)
	}
}

func (r *sqliteDirectoryRepo) lookupUsers(ctx context.Context, name string) ([]models.DirectoryUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_name, email, avatar_url, position, status
		FROM directory_users
		WHERE LOWER(display_name) = LOWER(?) ORDER BY id ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup users: %w", err)
	}
	defer rows.Close()

	var users []models.DirectoryUser
	for rows.Next() {
		var u models.DirectoryUser
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Email, &u.AvatarURL, &u.Position, &u.Status); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *sqliteDirectoryRepo) GetUserByID(ctx context.Context, id string) (*models.DirectoryUser, error) {
	u := &models.DirectoryUser{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, avatar_url, position, status
		FROM directory_users WHERE id = ?`, id,
	).Scan(&u.ID, &u.DisplayName, &u.Email, &u.AvatarURL, &u.Position, &u.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *sqliteDirectoryRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]models.DirectoryUser, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT id, display_name, email, avatar_url, position, status
		FROM directory_users WHERE id IN (%s)`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	defer rows.Close()

	var users []models.DirectoryUser
	for rows.Next() {
		var u models.DirectoryUser
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Email, &u.AvatarURL, &u.Position, &u.Status); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Suggestion dönüştürücüler — subtitle kuralları tek yerde dursun diye
// burada tanımlı, hem repo hem servis katmanı kullanır.

func UserSuggestion(u models.DirectoryUser) models.Suggestion {
	return models.Suggestion{
		Kind:        models.MentionUser,
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Subtitle:    u.Position,
		AvatarURL:   u.AvatarURL,
	}
}

func TaskSuggestion(t models.DirectoryTask) models.Suggestion {
	return models.Suggestion{
		Kind:        models.MentionTask,
		ID:          t.ID,
		DisplayName: t.Title,
		Subtitle:    t.Status,
	}
}

func ProjectSuggestion(p models.DirectoryProject) models.Suggestion {
	return models.Suggestion{
		Kind:        models.MentionProject,
		ID:          p.ID,
		DisplayName: p.Name,
		Subtitle:    fmt.Sprintf("%%%d", p.Progress),
	}
}
