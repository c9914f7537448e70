package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	NExamples     int      `mapstructure:"n_examples" yaml:"n_examples"`
	LabelLimit    int      `mapstructure:"label_limit" yaml:"label_limit"`
	NullTokens    []string `mapstructure:"null_tokens" yaml:"null_tokens"`
	ListSeparator string   `mapstructure:"list_separator" yaml:"list_separator"`
	BundlesDir    string   `mapstructure:"bundles_dir" yaml:"bundles_dir"`

	// Dataset cache and batch concurrency
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`
	Workers   int `mapstructure:"workers" yaml:"workers"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"n_examples", "label_limit", "null_tokens", "list_separator", "bundles_dir",
	"cache_size", "workers", "log_level", "log_file",
}

// Dir returns ~/.listsum.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".listsum"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.listsum/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LISTSUM")
	v.AutomaticEnv()

	v.SetDefault("n_examples", 10)
	v.SetDefault("label_limit", 500)
	v.SetDefault("null_tokens", []string{"", "None", "null", "NULL", "NA", "N/A", "NaN", "nan"})
	v.SetDefault("list_separator", "")
	v.SetDefault("bundles_dir", "")
	v.SetDefault("cache_size", 16)
	v.SetDefault("workers", 4)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve bundles_dir default: ~/.listsum/bundles
	if c.BundlesDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.BundlesDir = filepath.Join(dir, "bundles")
	}
	return &c, nil
}

// Set validates val and assigns it to key.
func (c *Global) Set(key, val string) error {
	positive := func() (int, error) {
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || i <= 0 {
			return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "n_examples":
		i, err := positive()
		if err != nil {
			return err
		}
		c.NExamples = i
	case "label_limit":
		i, err := positive()
		if err != nil {
			return err
		}
		c.LabelLimit = i
	case "cache_size":
		i, err := positive()
		if err != nil {
			return err
		}
		c.CacheSize = i
	case "workers":
		i, err := positive()
		if err != nil {
			return err
		}
		c.Workers = i
	case "null_tokens":
		// Comma-separated; an empty entry keeps blank cells missing.
		c.NullTokens = strings.Split(val, ",")
	case "list_separator":
		c.ListSeparator = val
	case "bundles_dir":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("bundles_dir cannot be empty")
		}
		c.BundlesDir = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_file":
		c.LogFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get returns the display form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "n_examples":
		return strconv.Itoa(c.NExamples), nil
	case "label_limit":
		return strconv.Itoa(c.LabelLimit), nil
	case "null_tokens":
		return strconv.Quote(strings.Join(c.NullTokens, ",")), nil
	case "list_separator":
		return strconv.Quote(c.ListSeparator), nil
	case "bundles_dir":
		return c.BundlesDir, nil
	case "cache_size":
		return strconv.Itoa(c.CacheSize), nil
	case "workers":
		return strconv.Itoa(c.Workers), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}
