// Package config holds the project-level settings read from
// .codenav/config.yml, with environment overrides.
package config

import "fmt"

// Config represents the complete codenav configuration.
type Config struct {
	Language string      `yaml:"language" mapstructure:"language"`
	Graph    GraphConfig `yaml:"graph" mapstructure:"graph"`
	Paths    PathsConfig `yaml:"paths" mapstructure:"paths"`
	Index    IndexConfig `yaml:"index" mapstructure:"index"`
	Query    QueryConfig `yaml:"query" mapstructure:"query"`
	Watch    WatchConfig `yaml:"watch" mapstructure:"watch"`
}

// GraphConfig locates the on-disk graph.
type GraphConfig struct {
	// Path is the graph file, relative to the project root unless absolute.
	Path string `yaml:"path" mapstructure:"path"`
}

// PathsConfig narrows which files get indexed.
type PathsConfig struct {
	// Ignore are glob patterns excluded from discovery, on top of .gitignore.
	Ignore []string `yaml:"ignore" mapstructure:"ignore"`
}

// IndexConfig tunes full index runs.
type IndexConfig struct {
	// Workers caps parallel file parsing. Zero means one per CPU.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// QueryConfig sets traversal defaults used when a command does not specify
// its own bounds.
type QueryConfig struct {
	DefaultDepth int `yaml:"default_depth" mapstructure:"default_depth"`
	MaxPaths     int `yaml:"max_paths" mapstructure:"max_paths"`
	HotspotLimit int `yaml:"hotspot_limit" mapstructure:"hotspot_limit"`
}

// WatchConfig tunes continuous indexing.
type WatchConfig struct {
	// DebounceMs is the quiet period in milliseconds before a change batch
	// triggers a reindex.
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Language: "go",
		Graph: GraphConfig{
			Path: "codegraph.bin",
		},
		Paths: PathsConfig{
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
			},
		},
		Index: IndexConfig{
			Workers: 0,
		},
		Query: QueryConfig{
			DefaultDepth: 3,
			MaxPaths:     100,
			HotspotLimit: 20,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// Validate rejects configurations that would make commands misbehave
// silently.
func Validate(cfg *Config) error {
	if cfg.Language == "" {
		return fmt.Errorf("language must not be empty")
	}
	if cfg.Graph.Path == "" {
		return fmt.Errorf("graph.path must not be empty")
	}
	if cfg.Index.Workers < 0 {
		return fmt.Errorf("index.workers must not be negative")
	}
	if cfg.Query.DefaultDepth < 1 {
		return fmt.Errorf("query.default_depth must be at least 1")
	}
	if cfg.Query.MaxPaths < 1 {
		return fmt.Errorf("query.max_paths must be at least 1")
	}
	if cfg.Query.HotspotLimit < 1 {
		return fmt.Errorf("query.hotspot_limit must be at least 1")
	}
	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}
	return nil
}
