package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aigameforge/forge/internal/domain/session"
)

// Service reconciles the two project stores. Local and cloud lists are kept
// independently consistent; no cross-store link is ever created. Remote
// operations require a session; local ones never do.
type Service struct {
	local  LocalStore
	remote RemoteStore
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(local LocalStore, remote RemoteStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{local: local, remote: remote, logger: logger}
}

// LoadLocal returns the device-local project list, most recent first.
// An empty store is an empty list, not an error.
func (s *Service) LoadLocal(ctx context.Context) ([]Project, error) {
	projects, err := s.local.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading local projects: %w", err)
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// LoadRemote returns the cloud projects owned by the session's principal,
// newest first. Without a session it returns an empty list rather than an
// error: an unauthenticated device simply has no cloud tab.
func (s *Service) LoadRemote(ctx context.Context, sess *session.Session) ([]Project, error) {
	if sess == nil {
		return []Project{}, nil
	}
	projects, err := s.remote.ListByOwner(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("loading cloud projects: %w", err)
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// SaveNewLocal prepends proj to the local list and persists the full list.
// The id must be generated before this call (see NewLocal).
func (s *Service) SaveNewLocal(ctx context.Context, proj Project) error {
	if strings.TrimSpace(proj.ID) == "" || strings.TrimSpace(proj.Title) == "" {
		return ErrInvalidInput
	}
	projects, err := s.local.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading local projects: %w", err)
	}
	projects = append([]Project{proj}, projects...)
	if err := s.local.WriteAll(ctx, projects); err != nil {
		return fmt.Errorf("saving local projects: %w", err)
	}
	s.logger.Info("saved local project", "id", proj.ID, "title", proj.Title)
	return nil
}

// UpdateScriptLocal replaces the script of the local project with the given
// id. A missing id is a no-op, not an error: the project may have been
// deleted concurrently in another tab, an accepted race.
func (s *Service) UpdateScriptLocal(ctx context.Context, id, script string) error {
	projects, err := s.local.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading local projects: %w", err)
	}
	found := false
	for i := range projects {
		if projects[i].ID == id {
			projects[i].Script = script
			found = true
			break
		}
	}
	if !found {
		s.logger.Debug("local script update skipped, id not present", "id", id)
		return nil
	}
	if err := s.local.WriteAll(ctx, projects); err != nil {
		return fmt.Errorf("saving local projects: %w", err)
	}
	return nil
}

// UpdateScriptRemote issues a targeted script update by row id. Without a
// session this is a no-op. Failures surface to the caller; nothing retries.
func (s *Service) UpdateScriptRemote(ctx context.Context, sess *session.Session, id, script string) error {
	if sess == nil {
		return nil
	}
	if err := s.remote.UpdateScript(ctx, sess, id, script); err != nil {
		return fmt.Errorf("updating cloud script: %w", err)
	}
	return nil
}

// DeleteLocal removes the project with the given id from the local list.
func (s *Service) DeleteLocal(ctx context.Context, id string) error {
	projects, err := s.local.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading local projects: %w", err)
	}
	kept := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := s.local.WriteAll(ctx, kept); err != nil {
		return fmt.Errorf("saving local projects: %w", err)
	}
	return nil
}

// DeleteRemote removes the cloud row with the given id. It fails fast with
// ErrAuthRequired before any network call when there is no session.
func (s *Service) DeleteRemote(ctx context.Context, sess *session.Session, id string) error {
	if sess == nil {
		return session.ErrAuthRequired
	}
	if err := s.remote.Delete(ctx, sess, id); err != nil {
		return fmt.Errorf("deleting cloud project: %w", err)
	}
	return nil
}

// SyncToRemote inserts a NEW cloud row derived from the local project's
// fields. The local id is not carried over and the local copy is not marked
// as synced; calling this twice for the same local project creates two
// independent cloud rows.
func (s *Service) SyncToRemote(ctx context.Context, sess *session.Session, proj Project) (*Project, error) {
	if sess == nil {
		return nil, session.ErrAuthRequired
	}
	created, err := s.remote.Insert(ctx, sess, Project{
		Title:       proj.Title,
		Type:        proj.Type,
		Description: proj.Description,
		Script:      proj.Script,
		ImageURL:    proj.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("syncing project to cloud: %w", err)
	}
	s.logger.Info("synced project to cloud", "local_id", proj.ID, "remote_id", created.ID)
	return created, nil
}

// FindLocal locates a local project by id.
func (s *Service) FindLocal(ctx context.Context, id string) (*Project, error) {
	projects, err := s.local.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading local projects: %w", err)
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, ErrProjectNotFound
}
