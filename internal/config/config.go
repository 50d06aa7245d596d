package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config carries the server and analysis settings.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	SeqURL     string `mapstructure:"seq_url" yaml:"seq_url"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Join suggestion bounds (memory/latency control on wide tables)
	SuggestMaxColsPerSide int     `mapstructure:"suggest_max_cols_per_side" yaml:"suggest_max_cols_per_side"`
	SuggestMaxUniques     int     `mapstructure:"suggest_max_uniques" yaml:"suggest_max_uniques"`
	SuggestMinScore       float64 `mapstructure:"suggest_min_score" yaml:"suggest_min_score"`

	// Profiling
	OutlierZThreshold float64 `mapstructure:"outlier_z_threshold" yaml:"outlier_z_threshold"`
	TopValues         int     `mapstructure:"top_values" yaml:"top_values"`
}

// Default returns the built-in settings used when no config file exists.
func Default() *Config {
	return &Config{
		ListenAddr:            ":8080",
		SeqURL:                "",
		LogLevel:              "info",
		MaxUploadBytes:        256 << 20,
		SuggestMaxColsPerSide: 30,
		SuggestMaxUniques:     50000,
		SuggestMinScore:       0.5,
		OutlierZThreshold:     3.0,
		TopValues:             8,
	}
}

// Load reads the configuration from cfgFile, or from
// ~/.datalyzer/config.yaml when cfgFile is empty. A missing file is not an
// error; defaults apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".datalyzer"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DATALYZER")
	v.AutomaticEnv()

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to cfgFile, or to
// ~/.datalyzer/config.yaml, creating the directory if necessary.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datalyzer")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
