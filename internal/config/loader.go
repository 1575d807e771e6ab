package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names read outside the VITRINE_ prefix.
const (
	EnvConfigPath = "VITRINE_CONFIG"
	EnvGeminiKey  = "GEMINI_API_KEY"
	EnvOpenAIKey  = "OPENAI_API_KEY"
)

const envPrefix = "VITRINE_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if VITRINE_CONFIG is set
//  3. env (prefix VITRINE_)
//
// Credentials come from GEMINI_API_KEY and OPENAI_API_KEY.
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// VITRINE_DATA_PATH -> data_path. Flat keys keep underscores.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The path variable itself is not a config key.
	k.Delete("config")

	cfg := *base
	cfg.EasterEggs = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}
	// A configured trigger table replaces the default one instead of merging by index.
	if !k.Exists("easter_eggs") {
		cfg.EasterEggs = base.EasterEggs
	}

	cfg.GeminiAPIKey = os.Getenv(EnvGeminiKey)
	cfg.OpenAIAPIKey = os.Getenv(EnvOpenAIKey)

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
