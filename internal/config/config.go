package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "openai/gpt-4.1"

// Config represents the gpt-commit configuration.
type Config struct {
	Model            string           `koanf:"model" validate:"required"`
	Format           string           `koanf:"format" validate:"oneof=text table json"`
	MaxDiffChars     int              `koanf:"max_diff_chars" validate:"gte=256"`
	MaxRegenerations int              `koanf:"max_regenerations" validate:"gte=0"`
	Completion       CompletionConfig `koanf:"completion"`
	Privacy          PrivacyConfig    `koanf:"privacy"`
}

// CompletionConfig locates and tunes the completion service.
type CompletionConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required,url"`
	APIKey      string        `koanf:"api_key" validate:"required"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	Temperature float64       `koanf:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `koanf:"max_tokens" validate:"gte=0"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `koanf:"redact_secrets"`
	RedactPaths   []string `koanf:"redact_paths"`
}

// Sources names the places configuration is read from. Empty paths select
// the defaults; a missing default file is skipped, a missing explicit file
// is an error.
type Sources struct {
	ConfigFile  string
	SecretsFile string
	// DotEnvDir is searched for a .env file. Empty disables .env loading.
	DotEnvDir string
	// Overrides come from CLI flags, keyed by dotted config path.
	Overrides map[string]string
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"model":                  DefaultModel,
		"format":                 "text",
		"max_diff_chars":         8000,
		"max_regenerations":      3,
		"completion.base_url":    "https://api.openai.com/v1",
		"completion.timeout":     "30s",
		"completion.temperature": 0.0,
		"completion.max_tokens":  256,
		"privacy.redact_secrets": true,
		"privacy.redact_paths":   []string{"**/.env", "**/*secrets*"},
	}
}

// Default returns a Config with all defaults applied and no credentials.
func Default() Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return cfg
}

// ConfigDir returns the platform-appropriate config directory for gpt-commit.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gpt-commit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "gpt-commit"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gpt-commit"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "gpt-commit"), nil
	default:
		return filepath.Join(home, ".config", "gpt-commit"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultSecretsPath returns the shared credentials file,
// ~/.config/cborg/secrets.json.
func DefaultSecretsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cborg", "secrets.json"), nil
}

// LoadFrom builds the effective config by merging, lowest first:
// defaults <- config file <- secrets file <- .env <- environment <- overrides.
func LoadFrom(src Sources) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadConfigFile(k, src.ConfigFile); err != nil {
		return Config{}, err
	}
	if err := loadSecrets(k, src.SecretsFile); err != nil {
		return Config{}, err
	}
	if src.DotEnvDir != "" {
		if err := loadDotEnv(k, filepath.Join(src.DotEnvDir, ".env")); err != nil {
			return Config{}, err
		}
	}
	if err := loadEnv(k); err != nil {
		return Config{}, err
	}
	if len(src.Overrides) > 0 {
		m := make(map[string]interface{}, len(src.Overrides))
		for key, v := range src.Overrides {
			m[key] = v
		}
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return Config{}, fmt.Errorf("applying flag overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Completion.APIKey = strings.TrimSpace(cfg.Completion.APIKey)
	cfg.Completion.BaseURL = strings.TrimSpace(cfg.Completion.BaseURL)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	log.Debug().
		Str("model", cfg.Model).
		Str("base_url", cfg.Completion.BaseURL).
		Dur("timeout", cfg.Completion.Timeout).
		Bool("redact", cfg.Privacy.RedactSecrets).
		Msg("Configuration loaded")
	return cfg, nil
}

func loadConfigFile(k *koanf.Koanf, path string) error {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	log.Debug().Str("file", path).Msg("Loaded config file")
	return nil
}

// Redacted returns a copy of c safe to print.
func (c Config) Redacted() Config {
	out := c
	if key := c.Completion.APIKey; key != "" {
		if len(key) > 8 {
			out.Completion.APIKey = key[:4] + "..." + key[len(key)-4:]
		} else {
			out.Completion.APIKey = "****"
		}
	}
	return out
}

// Marshal renders c as YAML in the config file layout.
func Marshal(c Config) ([]byte, error) {
	m := map[string]interface{}{
		"model":             c.Model,
		"format":            c.Format,
		"max_diff_chars":    c.MaxDiffChars,
		"max_regenerations": c.MaxRegenerations,
		"completion": map[string]interface{}{
			"base_url":    c.Completion.BaseURL,
			"api_key":     c.Completion.APIKey,
			"timeout":     c.Completion.Timeout.String(),
			"temperature": c.Completion.Temperature,
			"max_tokens":  c.Completion.MaxTokens,
		},
		"privacy": map[string]interface{}{
			"redact_secrets": c.Privacy.RedactSecrets,
			"redact_paths":   c.Privacy.RedactPaths,
		},
	}
	return yaml.Parser().Marshal(m)
}
