// Package config loads docmerge settings.
//
// Priority: CLI flags > DOCMERGE_* env vars > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "DOCMERGE"
	configFileName = "config"
	appDirName     = "docmerge"
)

type Config struct {
	// MaxLines rejects inputs with more lines on either side. Zero or less
	// disables the limit.
	MaxLines int `mapstructure:"max_lines"`

	HeadLabel string `mapstructure:"head_label"`
	BaseLabel string `mapstructure:"base_label"`

	Backup  bool `mapstructure:"backup"`
	Workers int  `mapstructure:"workers"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Color is one of auto, always, never.
	Color string `mapstructure:"color"`
}

func Default() Config {
	return Config{
		MaxLines:  20000,
		HeadLabel: "head",
		BaseLabel: "base",
		Backup:    false,
		Workers:   runtime.NumCPU(),
		LogLevel:  "warn",
		Color:     "auto",
	}
}

// New returns a viper instance with defaults, env binding and, when present,
// the config file. An explicit path must exist; the default location may not.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("max_lines", def.MaxLines)
	v.SetDefault("head_label", def.HeadLabel)
	v.SetDefault("base_label", def.BaseLabel)
	v.SetDefault("backup", def.Backup)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("color", def.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	dir, err := Dir()
	if err != nil {
		return v, nil
	}
	v.SetConfigName(configFileName)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// BindFlags binds command flags to their config keys. Flag names use dashes,
// keys use underscores.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKey(key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func isKey(key string) bool {
	switch key {
	case "max_lines", "head_label", "base_label", "backup", "workers", "log_level", "log_file", "color":
		return true
	}
	return false
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.HeadLabel) == "" || strings.TrimSpace(c.BaseLabel) == "" {
		return errors.New("head_label and base_label must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q (expected auto|always|never)", c.Color)
	}
	return nil
}

// Dir is the per-user docmerge config directory.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appDirName), nil
}
