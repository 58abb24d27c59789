package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds everything a shopper client or Lambda needs to reach its
// collaborators.
type Config struct {
	AWS         AWSConfig         `toml:"aws"`
	Auth        AuthConfig        `toml:"auth"`
	Suggestions SuggestionsConfig `toml:"suggestions"`
	Snapshot    SnapshotConfig    `toml:"snapshot"`
	Log         LogConfig         `toml:"log"`
}

type AWSConfig struct {
	Region    string `toml:"region,omitempty"`
	TableName string `toml:"table_name,omitempty"`
	TopicArn  string `toml:"topic_arn,omitempty"`
}

type AuthConfig struct {
	PoolURL          string `toml:"pool_url,omitempty"`
	ClientId         string `toml:"client_id,omitempty"`
	RedirectURI      string `toml:"redirect_uri,omitempty"`
	IdentityProvider string `toml:"identity_provider,omitempty"`
}

type SuggestionsConfig struct {
	ModelId string `toml:"model_id,omitempty"`
	Limit   int    `toml:"limit"`
}

// SnapshotConfig selects where the local session is kept: "file" or "redis".
type SnapshotConfig struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr,omitempty"`
	Namespace string `toml:"namespace,omitempty"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func DefaultConfig() Config {
	return Config{
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Auth: AuthConfig{
			RedirectURI:      "http://localhost:8765/callback",
			IdentityProvider: "Google",
		},
		Suggestions: SuggestionsConfig{
			Limit: 5,
		},
		Snapshot: SnapshotConfig{
			Backend: "file",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ConfigDir returns the XDG config directory, which also holds the file
// snapshot and saved tokens.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shopper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shopper")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file and applies environment overrides. A missing
// file yields the defaults.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// FromEnv is the Lambda configuration: defaults plus the function environment.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.Log.Format = "json"
	ApplyEnv(&cfg)
	return cfg
}

func ApplyEnv(cfg *Config) {
	overrides := map[string]*string{
		"AWS_REGION":           &cfg.AWS.Region,
		"TABLE_NAME":           &cfg.AWS.TableName,
		"TOPIC_ARN":            &cfg.AWS.TopicArn,
		"AUTH_POOL_URL":        &cfg.Auth.PoolURL,
		"AUTH_CLIENT_ID":       &cfg.Auth.ClientId,
		"SUGGESTIONS_MODEL_ID": &cfg.Suggestions.ModelId,
		"REDIS_ADDR":           &cfg.Snapshot.RedisAddr,
		"LOG_LEVEL":            &cfg.Log.Level,
	}
	for name, field := range overrides {
		if value := os.Getenv(name); value != "" {
			*field = value
		}
	}
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
