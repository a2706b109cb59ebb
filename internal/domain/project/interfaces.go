package project

import (
	"context"

	"github.com/aigameforge/forge/internal/domain/session"
)

// LocalStore persists the device-local project list as a single slot.
// The whole list is read and rewritten on every mutation; concurrent
// writers race at list granularity (last write wins).
type LocalStore interface {
	// ReadAll returns the stored list, or an empty list when nothing is
	// stored yet.
	ReadAll(ctx context.Context) ([]Project, error)
	// WriteAll replaces the stored list wholesale.
	WriteAll(ctx context.Context, projects []Project) error
}

// RemoteStore persists account-scoped project rows behind an authenticated
// backend. Row ids are store-assigned.
type RemoteStore interface {
	ListByOwner(ctx context.Context, sess *session.Session) ([]Project, error)
	Insert(ctx context.Context, sess *session.Session, proj Project) (*Project, error)
	UpdateScript(ctx context.Context, sess *session.Session, id, script string) error
	Delete(ctx context.Context, sess *session.Session, id string) error
}
