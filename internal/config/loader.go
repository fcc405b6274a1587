package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "CLANSTATS_"
	envFileVar = "CLANSTATS_CONFIG"
)

// camelKeys maps the camelCase keys of hand-written JSON configs onto koanf keys.
var camelKeys = map[string]string{
	"clanTag":         "clan_tag",
	"tokenEnvVar":     "token_env_var",
	"sleepSeconds":    "sleep_seconds",
	"cacheTtlSeconds": "cache_ttl_seconds",
	"includeWarlog":   "include_warlog",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML or JSON) from path, or CLANSTATS_CONFIG when path is empty
//  3. env (prefix CLANSTATS_)
//
// A .env file in the working directory is read first so that both the
// CLANSTATS_ variables and the API token can live there.
func Load(_ context.Context, path string) (*Config, error) {
	// missing .env is fine; variables may come from the real environment
	_ = godotenv.Load()

	base := New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(envFileVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
		for camel, key := range camelKeys {
			if k.Exists(camel) && !k.Exists(key) {
				if err := k.Set(key, k.Get(camel)); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
				}
			}
		}
	}

	// CLANSTATS_CACHE_TTL_SECONDS -> cache_ttl_seconds
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
