// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ProviderKind selects where relatives are looked up.
type ProviderKind string

const (
	ProviderFamilySearch ProviderKind = "familysearch"
	ProviderTree         ProviderKind = "tree"
	ProviderNeo4j        ProviderKind = "neo4j"
)

// HTTPConfig holds shared HTTP settings used by remote providers.
type HTTPConfig struct {
	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "kinpath/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ProviderConfig holds settings for the relative provider.
type ProviderConfig struct {
	// Kind is familysearch, tree or neo4j.
	Kind ProviderKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// BaseURL overrides the FamilySearch API root.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Environment is production, beta or integration; it picks the default
	// base URL when BaseURL is empty.
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty" mapstructure:"environment"`

	AccessToken string `json:"-" yaml:"-" mapstructure:"access_token"`
	AppKey      string `json:"-" yaml:"-" mapstructure:"app_key"`

	// MaxRetries bounds retries on 429 and transient 5xx (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// TreeFile is the YAML tree used by the tree provider.
	TreeFile string `json:"tree_file,omitempty" yaml:"tree_file,omitempty" mapstructure:"tree_file"`
}

// CacheConfig bounds the relative lookup cache.
type CacheConfig struct {
	Capacity int           `json:"capacity" yaml:"capacity" mapstructure:"capacity"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// SearchConfig holds the kinship search budgets and post-processing limits.
type SearchConfig struct {
	MaxDepth        int           `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`
	MaxNodes        int           `json:"max_nodes" yaml:"max_nodes" mapstructure:"max_nodes"`
	MaxCandidates   int           `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`
	VariantsPerNode int           `json:"variants_per_node" yaml:"variants_per_node" mapstructure:"variants_per_node"`
	KeepWithin      int           `json:"keep_within" yaml:"keep_within" mapstructure:"keep_within"`
	MaxPaths        int           `json:"max_paths" yaml:"max_paths" mapstructure:"max_paths"`
	Concurrency     int           `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
	Timeout         time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Locale selects label language: en or pt.
	Locale string `json:"locale" yaml:"locale" mapstructure:"locale"`

	// RemoteFinder asks the provider's own relationship endpoint first.
	RemoteFinder bool `json:"remote_finder" yaml:"remote_finder" mapstructure:"remote_finder"`
}

// StoreConfig locates the snapshot database.
type StoreConfig struct {
	// Dir holds kinpath.db (default ".kinpath").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// GraphConfig holds Neo4j connection settings.
type GraphConfig struct {
	URI            string `json:"uri" yaml:"uri" mapstructure:"uri"`
	Database       string `json:"database" yaml:"database" mapstructure:"database"`
	Username       string `json:"username" yaml:"username" mapstructure:"username"`
	Password       string `json:"-" yaml:"-" mapstructure:"password"`
	MaxConnections int    `json:"max_connections" yaml:"max_connections" mapstructure:"max_connections"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	OutputPaths []string `json:"output_paths" yaml:"output_paths" mapstructure:"output_paths"`
}

// Config groups every section of kinpath.yaml.
type Config struct {
	Provider ProviderConfig `json:"provider" yaml:"provider" mapstructure:"provider"`
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Graph    GraphConfig    `json:"graph" yaml:"graph" mapstructure:"graph"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
