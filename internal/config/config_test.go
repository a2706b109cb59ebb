package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "supabase", cfg.Remote.Backend)
	require.Equal(t, defaultSupabaseURL, cfg.Supabase.URL)
	require.Equal(t, defaultSupabaseAnonKey, cfg.Supabase.AnonKey)
	require.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	require.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FORGE_SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("FORGE_SUPABASE_ANON_KEY", "anon-override")
	t.Setenv("FORGE_TRANSPORT_MODE", "http")
	t.Setenv("FORGE_SERVER_PORT", "9999")
	t.Setenv("FORGE_REMOTE_BACKEND", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://example.supabase.co", cfg.Supabase.URL)
	require.Equal(t, "anon-override", cfg.Supabase.AnonKey)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Remote.Backend)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.yaml")
	data := []byte("storage:\n  path: /tmp/projects.json\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("FORGE_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/projects.json", cfg.Storage.Path)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FORGE_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("FORGE_SERVER_PORT", "8080")
	t.Setenv("FORGE_TRANSPORT_MODE", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("FORGE_TRANSPORT_MODE", "stdio")
	t.Setenv("FORGE_REMOTE_BACKEND", "dynamo")
	_, err = Load()
	require.Error(t, err)
}
