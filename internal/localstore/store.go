// Package localstore persists the device-local project list in a single
// JSON slot, mirroring browser localStorage semantics: the array is decoded
// in full on every read and rewritten in full on every mutation.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aigameforge/forge/internal/domain/project"
)

// Store implements project.LocalStore over a Slot.
type Store struct {
	slot   Slot
	logger *slog.Logger
}

// New creates a local project store over the given slot.
func New(slot Slot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{slot: slot, logger: logger}
}

// ReadAll decodes the stored list. The slot holds arbitrary JSON written by
// whoever got there last, so entries are validated individually: malformed
// ones are dropped with a log line instead of failing the whole read.
func (s *Store) ReadAll(ctx context.Context) ([]project.Project, error) {
	data, err := s.slot.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []project.Project{}, nil
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(data, &rawEntries); err != nil {
		return nil, fmt.Errorf("stored projects are not a JSON array: %w", err)
	}

	projects := make([]project.Project, 0, len(rawEntries))
	for i, raw := range rawEntries {
		var proj project.Project
		if err := json.Unmarshal(raw, &proj); err != nil {
			s.logger.Warn("dropping malformed stored project", "index", i, "error", err)
			continue
		}
		if proj.ID == "" {
			s.logger.Warn("dropping stored project without id", "index", i)
			continue
		}
		if proj.ImageURL == "" {
			proj.ImageURL = project.DefaultImageURL
		}
		projects = append(projects, proj)
	}
	return projects, nil
}

// WriteAll replaces the stored list wholesale.
func (s *Store) WriteAll(ctx context.Context, projects []project.Project) error {
	if projects == nil {
		projects = []project.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}
	return s.slot.Write(ctx, data)
}
