package mocks

import (
	"context"

	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// LocalStore is a mock for project.LocalStore.
type LocalStore struct {
	mock.Mock
}

func (m *LocalStore) ReadAll(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LocalStore) WriteAll(ctx context.Context, projects []project.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

// RemoteStore is a mock for project.RemoteStore.
type RemoteStore struct {
	mock.Mock
}

func (m *RemoteStore) ListByOwner(ctx context.Context, sess *session.Session) ([]project.Project, error) {
	args := m.Called(ctx, sess)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteStore) Insert(ctx context.Context, sess *session.Session, proj project.Project) (*project.Project, error) {
	args := m.Called(ctx, sess, proj)
	if created, ok := args.Get(0).(*project.Project); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteStore) UpdateScript(ctx context.Context, sess *session.Session, id, script string) error {
	args := m.Called(ctx, sess, id, script)
	return args.Error(0)
}

func (m *RemoteStore) Delete(ctx context.Context, sess *session.Session, id string) error {
	args := m.Called(ctx, sess, id)
	return args.Error(0)
}
