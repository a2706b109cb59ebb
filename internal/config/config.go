package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Fallback Supabase project credentials, used when no override is configured.
const (
	defaultSupabaseURL     = "https://gvhvphctjtrzgnjqleqd.supabase.co"
	defaultSupabaseAnonKey = "sb_publishable_g4CfrZPp-pJm9hVpJ3mkHQ_b45K0LA8"
)

// Config defines server configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Transport   TransportConfig   `yaml:"transport"`
	Log         LogConfig         `yaml:"log"`
	Storage     StorageConfig     `yaml:"storage"`
	Remote      RemoteConfig      `yaml:"remote"`
	Supabase    SupabaseConfig    `yaml:"supabase"`
	AI          AIConfig          `yaml:"ai"`
	GitHub      GitHubConfig      `yaml:"github"`
	Auth        AuthConfig        `yaml:"auth"`
	Credentials CredentialsConfig `yaml:"credentials"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig locates the device-local project slot.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// RemoteConfig selects the cloud store backend.
type RemoteConfig struct {
	Backend string `yaml:"backend"` // "supabase" or "sqlite"
	DBPath  string `yaml:"db_path"`
}

type SupabaseConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

type AIConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

type GitHubConfig struct {
	BaseURL string `yaml:"base_url"`
}

// AuthConfig provides a static session for self-hosted (sqlite) deployments,
// where there is no external auth service to resolve bearer tokens.
type AuthConfig struct {
	Token  string `yaml:"token"`
	UserID string `yaml:"user_id"`
}

// CredentialsConfig locates the device-local engine settings file.
type CredentialsConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Path: "forge_projects.json",
		},
		Remote: RemoteConfig{
			Backend: "supabase",
			DBPath:  "forge.db",
		},
		Supabase: SupabaseConfig{
			URL:     defaultSupabaseURL,
			AnonKey: defaultSupabaseAnonKey,
		},
		AI: AIConfig{
			Model: "gemini-2.5-flash",
		},
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
		},
		Credentials: CredentialsConfig{
			Path: "forge_settings.json",
		},
	}

	if path := os.Getenv("FORGE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("FORGE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("FORGE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FORGE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("FORGE_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if level := os.Getenv("FORGE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("FORGE_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if backend := os.Getenv("FORGE_REMOTE_BACKEND"); backend != "" {
		cfg.Remote.Backend = backend
	}
	if path := os.Getenv("FORGE_DB_PATH"); path != "" {
		cfg.Remote.DBPath = path
	}
	if url := os.Getenv("FORGE_SUPABASE_URL"); url != "" {
		cfg.Supabase.URL = url
	}
	if key := os.Getenv("FORGE_SUPABASE_ANON_KEY"); key != "" {
		cfg.Supabase.AnonKey = key
	}
	if model := os.Getenv("FORGE_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if key := os.Getenv("FORGE_GEMINI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if url := os.Getenv("FORGE_GITHUB_BASE_URL"); url != "" {
		cfg.GitHub.BaseURL = url
	}
	if token := os.Getenv("FORGE_AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if userID := os.Getenv("FORGE_AUTH_USER_ID"); userID != "" {
		cfg.Auth.UserID = userID
	}
	if path := os.Getenv("FORGE_CREDENTIALS_PATH"); path != "" {
		cfg.Credentials.Path = path
	}

	if cfg.Transport.Mode != "stdio" && cfg.Transport.Mode != "http" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}
	if cfg.Remote.Backend != "supabase" && cfg.Remote.Backend != "sqlite" {
		return Config{}, fmt.Errorf("invalid remote backend %q", cfg.Remote.Backend)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
