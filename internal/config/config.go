// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads kinpath.yaml, KINPATH_* environment variables and
// bound command flags into a types.Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/kinpath/internal/provider/familysearch"
	"github.com/pdiddy/kinpath/pkg/types"
)

// EnvPrefix is the prefix of environment overrides, e.g. KINPATH_SEARCH_MAX_DEPTH.
const EnvPrefix = "KINPATH"

// Defaults returns the configuration used when nothing is set.
func Defaults() types.Config {
	return types.Config{
		Provider: types.ProviderConfig{
			Kind:        types.ProviderFamilySearch,
			Environment: familysearch.DefaultEnvironment,
			MaxRetries:  3,
		},
		HTTP: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "kinpath/0.1",
		},
		Cache: types.CacheConfig{
			Capacity: 2500,
			TTL:      900 * time.Second,
		},
		Search: types.SearchConfig{
			MaxDepth:        8,
			MaxNodes:        10000,
			MaxCandidates:   50,
			VariantsPerNode: 16,
			KeepWithin:      3,
			MaxPaths:        8,
			Concurrency:     8,
			Timeout:         60 * time.Second,
			Locale:          "en",
		},
		Store: types.StoreConfig{Dir: ".kinpath"},
		Graph: types.GraphConfig{
			Database:       "neo4j",
			Username:       "neo4j",
			MaxConnections: 10,
		},
		Log: types.LogConfig{Level: "warn", Format: "console"},
	}
}

// SetDefaults registers every default on v so that environment variables
// and Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("provider.kind", string(d.Provider.Kind))
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.environment", d.Provider.Environment)
	v.SetDefault("provider.access_token", "")
	v.SetDefault("provider.app_key", "")
	v.SetDefault("provider.max_retries", d.Provider.MaxRetries)
	v.SetDefault("provider.tree_file", "")

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)

	v.SetDefault("cache.capacity", d.Cache.Capacity)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("search.max_depth", d.Search.MaxDepth)
	v.SetDefault("search.max_nodes", d.Search.MaxNodes)
	v.SetDefault("search.max_candidates", d.Search.MaxCandidates)
	v.SetDefault("search.variants_per_node", d.Search.VariantsPerNode)
	v.SetDefault("search.keep_within", d.Search.KeepWithin)
	v.SetDefault("search.max_paths", d.Search.MaxPaths)
	v.SetDefault("search.concurrency", d.Search.Concurrency)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.locale", d.Search.Locale)
	v.SetDefault("search.remote_finder", false)

	v.SetDefault("store.dir", d.Store.Dir)

	v.SetDefault("graph.uri", "")
	v.SetDefault("graph.database", d.Graph.Database)
	v.SetDefault("graph.username", d.Graph.Username)
	v.SetDefault("graph.password", "")
	v.SetDefault("graph.max_connections", d.Graph.MaxConnections)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Setup points v at the config file and environment. An explicit file
// wins; otherwise kinpath.yaml is looked up in . and ~/.config/kinpath.
func Setup(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("kinpath")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "kinpath"))
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

// Read loads the config file if there is one. A missing file is not an
// error when no explicit file was requested. It returns the file used.
func Read(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the search or providers cannot work with.
func Validate(cfg types.Config) error {
	switch cfg.Provider.Kind {
	case types.ProviderFamilySearch, types.ProviderTree, types.ProviderNeo4j:
	default:
		return fmt.Errorf("config: unknown provider %q (want familysearch, tree or neo4j)", cfg.Provider.Kind)
	}
	if cfg.Cache.Capacity < 1 {
		return fmt.Errorf("config: cache.capacity must be at least 1, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache.ttl must be positive, got %s", cfg.Cache.TTL)
	}
	s := cfg.Search
	for _, f := range []struct {
		name string
		val  int
	}{
		{"search.max_depth", s.MaxDepth},
		{"search.max_nodes", s.MaxNodes},
		{"search.max_candidates", s.MaxCandidates},
		{"search.variants_per_node", s.VariantsPerNode},
		{"search.max_paths", s.MaxPaths},
		{"search.concurrency", s.Concurrency},
	} {
		if f.val < 1 {
			return fmt.Errorf("config: %s must be at least 1, got %d", f.name, f.val)
		}
	}
	if s.KeepWithin < 0 {
		return fmt.Errorf("config: search.keep_within must not be negative, got %d", s.KeepWithin)
	}
	switch s.Locale {
	case "en", "pt":
	default:
		return fmt.Errorf("config: unknown locale %q (want en or pt)", s.Locale)
	}
	return nil
}
