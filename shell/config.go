package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/quickkv/storage/cache"
	"github.com/viant/quickkv/storage/filestore"
	"github.com/viant/quickkv/storage/page"
	"gopkg.in/yaml.v3"
)

// Config defines shell and store settings.
type Config struct {
	// Dir holds namespace files.
	Dir        string `yaml:"dir"`
	PageSize   uint64 `yaml:"pageSize"`
	CachePages int    `yaml:"cachePages"`
	Sync       bool   `yaml:"sync"`
	Lock       bool   `yaml:"lock"`
	// Gops starts the gops diagnostics agent in the binary.
	Gops bool `yaml:"gops"`
	// Verbose logs store lifecycle events.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Dir:        ".",
		PageSize:   page.DefaultSize,
		CachePages: cache.DefaultPages,
		Lock:       true,
	}
}

// LoadConfig reads a YAML config; unset fields keep their defaults.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if cfg.Dir, err = expandUserPath(cfg.Dir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Options converts the config into store options.
func (c *Config) Options(logf func(format string, args ...any)) []filestore.Option {
	opts := []filestore.Option{
		filestore.WithBaseURL(c.Dir),
		filestore.WithPageSize(c.PageSize),
		filestore.WithCachePages(c.CachePages),
		filestore.WithSync(c.Sync),
		filestore.WithLock(c.Lock),
	}
	if c.Verbose && logf != nil {
		opts = append(opts, filestore.WithLogf(logf))
	}
	return opts
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return path, nil
	}
	if strings.HasPrefix(trimmed, "file://") {
		trimmed = strings.TrimPrefix(trimmed, "file://")
	}
	if strings.HasPrefix(trimmed, "~/") || trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(trimmed, "~")), nil
	}
	return trimmed, nil
}
