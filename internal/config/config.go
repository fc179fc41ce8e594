package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Object store selection: "s3" or "fs".
	StoreBackend string `mapstructure:"store_backend" yaml:"store_backend"`

	// S3-compatible endpoint settings.
	S3Endpoint  string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region    string `mapstructure:"s3_region" yaml:"s3_region"`
	S3AccessKey string `mapstructure:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key" yaml:"s3_secret_key"`
	S3Secure    bool   `mapstructure:"s3_secure" yaml:"s3_secure"`

	// FSRoot backs the fs store for local runs.
	FSRoot string `mapstructure:"fs_root" yaml:"fs_root"`

	// Normalization pipeline knobs.
	OutlierThreshold  float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	OutlierSampleFrac float64 `mapstructure:"outlier_sample_frac" yaml:"outlier_sample_frac"`
	OutlierSeed       int64   `mapstructure:"outlier_seed" yaml:"outlier_seed"`
	ResolveCutoff     float64 `mapstructure:"resolve_cutoff" yaml:"resolve_cutoff"`
	WinsorLimit       float64 `mapstructure:"winsor_limit" yaml:"winsor_limit"`
	DateCoerceRate    float64 `mapstructure:"date_coerce_rate" yaml:"date_coerce_rate"`
	OneHotMax         int     `mapstructure:"one_hot_max" yaml:"one_hot_max"`

	// Drift thresholds.
	PSIThreshold float64 `mapstructure:"psi_threshold" yaml:"psi_threshold"`
	KSAlpha      float64 `mapstructure:"ks_alpha" yaml:"ks_alpha"`

	// HTTP server settings.
	ListenAddr  string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.datasentinel/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datasentinel")
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
	v.SetEnvPrefix("DATASENTINEL")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store_backend", "s3")
	v.SetDefault("s3_region", "ap-south-1")
	v.SetDefault("s3_secure", true)
	v.SetDefault("fs_root", ".")
	v.SetDefault("outlier_threshold", 1.5)
	v.SetDefault("outlier_sample_frac", 0.1)
	v.SetDefault("outlier_seed", 42)
	v.SetDefault("resolve_cutoff", 0.05)
	v.SetDefault("winsor_limit", 0.05)
	v.SetDefault("date_coerce_rate", 0.5)
	v.SetDefault("one_hot_max", 10)
	v.SetDefault("psi_threshold", 0.2)
	v.SetDefault("ks_alpha", 0.05)
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("cors_origins", []string{})

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datasentinel")
		_ = os.MkdirAll(dir, 0o755)
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
	return &c, nil
}
