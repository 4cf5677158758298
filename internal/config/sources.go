package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/getsops/sops/v3/decrypt"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

const envPrefix = "GPTCOMMIT_"

// credentialKeys maps the well-known credential variables to config keys.
// Later entries win when several are set.
var credentialKeys = []struct {
	name string
	key  string
}{
	{"OPENAI_BASE_URL", "completion.base_url"},
	{"OPENAI_API_KEY", "completion.api_key"},
	{"CBORG_BASE_URL", "completion.base_url"},
	{"CBORG_API_KEY", "completion.api_key"},
}

// loadSecrets reads the JSON credentials file. Files carrying SOPS metadata
// are decrypted first.
func loadSecrets(k *koanf.Koanf, path string) error {
	explicit := path != ""
	if !explicit {
		p, err := DefaultSecretsPath()
		if err != nil {
			return nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("reading secrets file: %w", err)
	}

	sk := koanf.New(".")
	if err := sk.Load(rawbytes.Provider(data), json.Parser()); err != nil {
		return fmt.Errorf("parsing secrets file %s: %w", path, err)
	}
	if sk.Exists("sops") {
		cleartext, err := decrypt.Data(data, "json")
		if err != nil {
			return fmt.Errorf("decrypting secrets file %s: %w", path, err)
		}
		sk = koanf.New(".")
		if err := sk.Load(rawbytes.Provider(cleartext), json.Parser()); err != nil {
			return fmt.Errorf("parsing decrypted secrets file %s: %w", path, err)
		}
		log.Debug().Str("file", path).Msg("Decrypted SOPS secrets file")
	}

	m := credentials(func(name string) string { return sk.String(name) })
	if len(m) == 0 {
		log.Warn().Str("file", path).Msg("Secrets file has no CBORG_API_KEY or CBORG_BASE_URL")
		return nil
	}
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("loading secrets: %w", err)
	}
	log.Debug().Str("file", path).Msg("Loaded secrets file")
	return nil
}

// loadDotEnv reads credential and GPTCOMMIT_ variables from a .env file
// without exporting them into the process environment.
func loadDotEnv(k *koanf.Koanf, path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	m := credentials(func(name string) string { return vars[name] })
	for name, value := range vars {
		if key, ok := envKey(name); ok {
			m[key] = envValue(key, value)
		}
	}
	if len(m) == 0 {
		return nil
	}
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	log.Debug().Str("file", path).Int("keys", len(m)).Msg("Loaded .env file")
	return nil
}

// loadEnv applies the credential aliases, then GPTCOMMIT_ variables.
// GPTCOMMIT_COMPLETION__BASE_URL sets completion.base_url: a double
// underscore separates nesting levels.
func loadEnv(k *koanf.Koanf) error {
	if m := credentials(os.Getenv); len(m) > 0 {
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return fmt.Errorf("loading credential env vars: %w", err)
		}
	}
	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(name, value string) (string, interface{}) {
		key, ok := envKey(name)
		if !ok {
			return "", nil
		}
		return key, envValue(key, value)
	}), nil)
	if err != nil {
		return fmt.Errorf("loading env vars: %w", err)
	}
	return nil
}

func credentials(lookup func(string) string) map[string]interface{} {
	m := make(map[string]interface{})
	for _, c := range credentialKeys {
		if v := strings.TrimSpace(lookup(c.name)); v != "" {
			m[c.key] = v
		}
	}
	return m
}

func envKey(name string) (string, bool) {
	if !strings.HasPrefix(name, envPrefix) {
		return "", false
	}
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	return key, key != ""
}

// envValue splits list-valued keys on commas.
func envValue(key, value string) interface{} {
	if key == "privacy.redact_paths" {
		var out []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return value
}
