// Package config loads and merges gpt-commit configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GPTCOMMIT_MODEL, GPTCOMMIT_COMPLETION__TIMEOUT, ...)
//     and the credential variables CBORG_API_KEY, CBORG_BASE_URL, OPENAI_API_KEY
//  3. A .env file in the working directory
//  4. The secrets file (~/.config/cborg/secrets.json), optionally SOPS-encrypted
//  5. Config file ($XDG_CONFIG_HOME/gpt-commit/config.yaml)
//  6. Built-in defaults
//
// Use [LoadFrom] to obtain a merged and validated [Config].
package config
