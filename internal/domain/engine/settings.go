package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const schemaVersion = 1

// Settings is the device-local settings blob: the selected engine, the
// per-engine credential set, and the source-control target. None of this
// leaves the device in bulk; at most one credential is forwarded per flow
// call, gated by the BYOK policy.
type Settings struct {
	SchemaVersion  int               `json:"schema_version"`
	SelectedEngine string            `json:"selected_engine,omitempty"`
	Keys           map[string]string `json:"keys,omitempty"`
	GitHubToken    string            `json:"gh_token,omitempty"`
	GitHubOwner    string            `json:"gh_user,omitempty"`
	GitHubRepo     string            `json:"gh_repo,omitempty"`
}

// Store reads and writes Settings as a JSON file. The mutex guards
// in-process read-modify-write only; a second process racing on the same
// file loses whole writes, same as the project slot.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a settings store at path. The file is created on first
// write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func defaultSettings() *Settings {
	return &Settings{
		SchemaVersion:  schemaVersion,
		SelectedEngine: DefaultEngine,
		Keys:           map[string]string{},
	}
}

// Load returns the stored settings, or defaults when nothing is stored yet.
func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if settings.Keys == nil {
		settings.Keys = map[string]string{}
	}
	if settings.SelectedEngine == "" || !Known(settings.SelectedEngine) {
		settings.SelectedEngine = DefaultEngine
	}
	return &settings, nil
}

func (s *Store) save(settings *Settings) error {
	settings.SchemaVersion = schemaVersion
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Select persists the active engine.
func (s *Store) Select(id string) error {
	if !Known(id) {
		return ErrUnknownEngine
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.load()
	if err != nil {
		return err
	}
	settings.SelectedEngine = id
	return s.save(settings)
}

// Selected returns the active engine id.
func (s *Store) Selected() (string, error) {
	settings, err := s.Load()
	if err != nil {
		return "", err
	}
	return settings.SelectedEngine, nil
}

// SetKey stores a credential for an engine.
func (s *Store) SetKey(id, key string) error {
	if !Known(id) {
		return ErrUnknownEngine
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.load()
	if err != nil {
		return err
	}
	settings.Keys[id] = key
	return s.save(settings)
}

// ClearKey removes the credential stored for an engine.
func (s *Store) ClearKey(id string) error {
	if !Known(id) {
		return ErrUnknownEngine
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.load()
	if err != nil {
		return err
	}
	delete(settings.Keys, id)
	return s.save(settings)
}

// Key returns the credential stored for an engine, or "" when none is set.
// Lookup failures read as no credential; the flow call then proceeds with
// the server-side key.
func (s *Store) Key(id string) string {
	settings, err := s.Load()
	if err != nil {
		return ""
	}
	return settings.Keys[id]
}

// SetGitHub persists the source-control target. The token is stored
// device-locally only; the sync adapter itself never persists it.
func (s *Store) SetGitHub(token, owner, repo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.load()
	if err != nil {
		return err
	}
	if token != "" {
		settings.GitHubToken = token
	}
	if owner != "" {
		settings.GitHubOwner = owner
	}
	if repo != "" {
		settings.GitHubRepo = repo
	}
	return s.save(settings)
}
