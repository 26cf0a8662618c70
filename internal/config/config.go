// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"staged/internal/linediff"

	"github.com/spf13/viper"
)

const appName = "staged"

const (
	defaultHost      = "127.0.0.1"
	defaultPort      = 7411
	defaultLogLevel  = "info"
	defaultAlgorithm = linediff.AlgorithmDifflib
	defaultCacheSize = 256
)

type Config struct {
	Server struct {
		Host string `mapstructure:"host" json:"host"`
		Port int    `mapstructure:"port" json:"port"`
	} `mapstructure:"server" json:"server"`

	Database struct {
		// Empty selects DatabasePath's default.
		Path string `mapstructure:"path" json:"path"`
	} `mapstructure:"database" json:"database"`

	Diff struct {
		Algorithm string `mapstructure:"algorithm" json:"algorithm"` // difflib, udiff, lcs
		CacheSize int    `mapstructure:"cache_size" json:"cache_size"`
	} `mapstructure:"diff" json:"diff"`

	Repo        string `mapstructure:"repo" json:"repo"`
	Environment string `mapstructure:"environment" json:"environment"` // development, production
	LogLevel    string `mapstructure:"log_level" json:"log_level"`     // debug, info, warn, error
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DatabasePath returns the configured review database directory, defaulting
// to a directory under the user config dir.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, appName, "reviews"), nil
}

// Load merges every .staged.json found in the user config locations and
// then workingDir, later files overriding earlier ones, and applies STAGED_*
// environment overrides on top.
func Load(workingDir string) (*Config, error) {
	v := viper.New()
	configureViper(v)
	setDefaults(v)

	for _, dir := range searchDirs(workingDir) {
		if err := mergeConfigDir(v, dir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configureViper(v *viper.Viper) {
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("database.path", "")
	v.SetDefault("diff.algorithm", defaultAlgorithm)
	v.SetDefault("diff.cache_size", defaultCacheSize)
	v.SetDefault("repo", "")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", defaultLogLevel)
}

func readConfig(err error) error {
	if err == nil {
		return nil
	}

	// It's okay if the config file doesn't exist
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}

	return fmt.Errorf("failed to read config: %w", err)
}

// searchDirs lists the config directories in increasing precedence. Unset
// variables and duplicates are skipped.
func searchDirs(workingDir string) []string {
	var dirs []string
	add := func(dir string) {
		if dir != "" && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	home := os.Getenv("HOME")
	add(home)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, appName))
	}
	if home != "" {
		add(filepath.Join(home, ".config", appName))
	}
	add(workingDir)
	return dirs
}

func mergeConfigDir(v *viper.Viper, dir string) error {
	file := viper.New()
	file.SetConfigName(fmt.Sprintf(".%s", appName))
	file.SetConfigType("json")
	file.AddConfigPath(dir)

	if err := readConfig(file.ReadInConfig()); err != nil {
		return err
	}
	return v.MergeConfigMap(file.AllSettings())
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if !slices.Contains(linediff.Algorithms, c.Diff.Algorithm) {
		return fmt.Errorf("unknown diff algorithm %q (want one of %s)", c.Diff.Algorithm, strings.Join(linediff.Algorithms, ", "))
	}
	if c.Diff.CacheSize < 0 {
		return fmt.Errorf("diff cache size cannot be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}
