package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
)

// ProjectStore implements project.RemoteStore against SQLite.
type ProjectStore struct {
	db *DB
}

// NewProjectStore creates a new ProjectStore
func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// ListByOwner returns all projects owned by the session's user, newest first.
func (s *ProjectStore) ListByOwner(ctx context.Context, sess *session.Session) ([]project.Project, error) {
	query := `
		SELECT id, title, type, description, script, image_url, created_at
		FROM game_projects
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		var proj project.Project
		if err := rows.Scan(
			&proj.ID,
			&proj.Title,
			&proj.Type,
			&proj.Description,
			&proj.Script,
			&proj.ImageURL,
			&proj.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if proj.ImageURL == "" {
			proj.ImageURL = project.DefaultImageURL
		}
		projects = append(projects, proj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// Insert stores a new project row under the session's user. The store
// assigns the id and creation time and returns the stored copy.
func (s *ProjectStore) Insert(ctx context.Context, sess *session.Session, proj project.Project) (*project.Project, error) {
	stored := proj
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO game_projects (id, user_id, title, type, description, script, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		stored.ID,
		sess.UserID,
		stored.Title,
		stored.Type,
		stored.Description,
		stored.Script,
		stored.ImageURL,
		stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	return &stored, nil
}

// UpdateScript overwrites the script of one owned project. Missing rows
// are not an error; the update simply matches nothing.
func (s *ProjectStore) UpdateScript(ctx context.Context, sess *session.Session, id, script string) error {
	query := `UPDATE game_projects SET script = ? WHERE id = ? AND user_id = ?`

	if _, err := s.db.ExecContext(ctx, query, script, id, sess.UserID); err != nil {
		return fmt.Errorf("failed to update script: %w", err)
	}
	return nil
}

// Delete removes one owned project.
func (s *ProjectStore) Delete(ctx context.Context, sess *session.Session, id string) error {
	query := `DELETE FROM game_projects WHERE id = ? AND user_id = ?`

	if _, err := s.db.ExecContext(ctx, query, id, sess.UserID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
