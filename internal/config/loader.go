package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration for a project root with the following priority
// (highest to lowest):
//  1. Environment variables (CODENAV_*)
//  2. Config file (.codenav/config.yml or .codenav/config.yaml)
//  3. Default values
//
// A missing config file is not an error; defaults plus environment apply.
func Load(rootDir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(rootDir, ".codenav"))

	v.SetEnvPrefix("CODENAV")
	v.AutomaticEnv()
	// CODENAV_GRAPH_PATH overrides graph.path, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("language")
	v.BindEnv("graph.path")
	v.BindEnv("index.workers")
	v.BindEnv("query.default_depth")
	v.BindEnv("query.max_paths")
	v.BindEnv("query.hotspot_limit")
	v.BindEnv("watch.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("language", def.Language)
	v.SetDefault("graph.path", def.Graph.Path)
	v.SetDefault("paths.ignore", def.Paths.Ignore)
	v.SetDefault("index.workers", def.Index.Workers)
	v.SetDefault("query.default_depth", def.Query.DefaultDepth)
	v.SetDefault("query.max_paths", def.Query.MaxPaths)
	v.SetDefault("query.hotspot_limit", def.Query.HotspotLimit)
	v.SetDefault("watch.debounce_ms", def.Watch.DebounceMs)
}

// GraphPath resolves the configured graph file against the project root.
func (c *Config) GraphPath(rootDir string) string {
	if filepath.IsAbs(c.Graph.Path) {
		return c.Graph.Path
	}
	return filepath.Join(rootDir, c.Graph.Path)
}
