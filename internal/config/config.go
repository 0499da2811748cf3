package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	SourcesFile    string `mapstructure:"sources_file"`
	ActiveSource   string `mapstructure:"active_source"`
	PublishersFile string `mapstructure:"publishers_file"`
	SynonymsFile   string `mapstructure:"synonyms_file"`

	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval"`
	RefreshInterval        time.Duration `mapstructure:"-"`

	HTTPAddr           string        `mapstructure:"http_addr"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	// SFTP drop used by the CSV export.
	SFTPHost                  string `mapstructure:"sftp_host"`
	SFTPPort                  int    `mapstructure:"sftp_port"`
	SFTPUser                  string `mapstructure:"sftp_user"`
	SFTPPass                  string `mapstructure:"sftp_pass"`
	SFTPDir                   string `mapstructure:"sftp_dir"`
	SFTPKnownHosts            string `mapstructure:"sftp_known_hosts"`
	SFTPInsecureIgnoreHostKey bool   `mapstructure:"sftp_insecure_ignore_host_key"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "scholarship-directory")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("active_source", "")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("synonyms_file", "")
	v.SetDefault("refresh_interval", 0) // seconds, 0 loads once
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/announced.db")
	v.SetDefault("storage_ttl_seconds", int64((180*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("sftp_host", "")
	v.SetDefault("sftp_port", 22)
	v.SetDefault("sftp_user", "")
	v.SetDefault("sftp_pass", "")
	v.SetDefault("sftp_dir", "/")
	v.SetDefault("sftp_known_hosts", "")
	v.SetDefault("sftp_insecure_ignore_host_key", false)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RefreshIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid refresh_interval (must be zero or positive seconds)")
	}
	cfg.RefreshInterval = time.Duration(cfg.RefreshIntervalSeconds) * time.Second

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http_addr is required")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	cfg.ActiveSource = strings.TrimSpace(cfg.ActiveSource)
	return &cfg, nil
}
