package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrLoadConfig indicates a failure to read or parse the YAML configuration.
var ErrLoadConfig = errors.New("config load failed")

// ErrValidateConfig indicates that the loaded configuration is invalid.
var ErrValidateConfig = errors.New("configuration validation failed")

// Config is the top-level configuration. Every component receives the
// slice of it that it needs; nothing reads globals.
type Config struct {
	Backup     BackupConfig     `mapstructure:"backup"     yaml:"backup"`
	Local      LocalDBConfig    `mapstructure:"local"      yaml:"local"`
	Production ProductionConfig `mapstructure:"production" yaml:"production"`
	Storage    StorageConfig    `mapstructure:"storage"    yaml:"storage"`
	Retention  RetentionConfig  `mapstructure:"retention"  yaml:"retention"`
	Vault      VaultConfig      `mapstructure:"vault"      yaml:"vault"`
}

// BackupConfig contains destination-directory and timeout options.
type BackupConfig struct {
	Directory         string        `mapstructure:"directory"          yaml:"directory"`
	TimestampFormat   string        `mapstructure:"timestamp_format"   yaml:"timestamp_format"`
	LocalTimeout      time.Duration `mapstructure:"local_timeout"      yaml:"local_timeout"`
	ProductionTimeout time.Duration `mapstructure:"production_timeout" yaml:"production_timeout"`
	RestoreTimeout    time.Duration `mapstructure:"restore_timeout"    yaml:"restore_timeout"`
	UploadTimeout     time.Duration `mapstructure:"upload_timeout"     yaml:"upload_timeout"`
}

// LocalDBConfig describes the Docker-hosted PostgreSQL instance.
type LocalDBConfig struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     string `mapstructure:"port"     yaml:"port"`
	Name     string `mapstructure:"name"     yaml:"name"`
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// ProductionConfig describes where the production connection string
// comes from: an environment variable first, a secret path as fallback.
type ProductionConfig struct {
	URLEnv     string `mapstructure:"url_env"     yaml:"url_env"`
	SecretPath string `mapstructure:"secret_path" yaml:"secret_path,omitempty"`
}

// StorageConfig holds blob-storage upload settings. The connection
// string itself is never stored here; it is resolved through the
// secret provider at upload time.
type StorageConfig struct {
	Container  string `mapstructure:"container"   yaml:"container"`
	Account    string `mapstructure:"account"     yaml:"account,omitempty"`
	SecretEnv  string `mapstructure:"secret_env"  yaml:"secret_env"`
	SecretPath string `mapstructure:"secret_path" yaml:"secret_path,omitempty"`
	Tier       string `mapstructure:"tier"        yaml:"tier"`
}

// RetentionConfig specifies the keep-windows per retention bucket.
type RetentionConfig struct {
	DailyDays     int `mapstructure:"daily_days"     yaml:"daily_days"`
	WeeklyWeeks   int `mapstructure:"weekly_weeks"   yaml:"weekly_weeks"`
	MonthlyMonths int `mapstructure:"monthly_months" yaml:"monthly_months"`
}

// VaultConfig holds connection settings for HashiCorp Vault.
type VaultConfig struct {
	Address  string `mapstructure:"address"   yaml:"address,omitempty"`
	Token    string `mapstructure:"token"     yaml:"token,omitempty"`
	RoleID   string `mapstructure:"role_id"   yaml:"role_id,omitempty"`
	RoleName string `mapstructure:"role_name" yaml:"role_name,omitempty"`
}

// Load reads the configuration from the given YAML file using Viper and
// unmarshals into the Config struct. An empty path yields the built-in
// defaults, so the tool runs without any configuration file.
func (c *Config) Load(path string) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: read config %s: %v", ErrLoadConfig, path, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("%w: unmarshal config: %v", ErrLoadConfig, err)
	}

	return c.Validate()
}

// Validate checks the invariants the rest of the tool relies on.
func (c *Config) Validate() error {
	if c.Backup.Directory == "" {
		return fmt.Errorf("%w: backup.directory is required", ErrValidateConfig)
	}
	if c.Backup.LocalTimeout <= 0 || c.Backup.ProductionTimeout <= 0 ||
		c.Backup.RestoreTimeout <= 0 || c.Backup.UploadTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrValidateConfig)
	}
	if c.Retention.DailyDays <= 0 || c.Retention.WeeklyWeeks <= 0 || c.Retention.MonthlyMonths <= 0 {
		return fmt.Errorf("%w: retention windows must be positive", ErrValidateConfig)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backup.directory", "./backups")
	v.SetDefault("backup.timestamp_format", "20060102_150405")
	v.SetDefault("backup.local_timeout", 5*time.Minute)
	v.SetDefault("backup.production_timeout", 10*time.Minute)
	v.SetDefault("backup.restore_timeout", 10*time.Minute)
	v.SetDefault("backup.upload_timeout", 30*time.Minute)

	v.SetDefault("local.host", "localhost")
	v.SetDefault("local.port", "5433")
	v.SetDefault("local.name", "peptide_plus")
	v.SetDefault("local.user", "peptide")
	v.SetDefault("local.password", "")

	v.SetDefault("production.url_env", "DATABASE_URL")

	v.SetDefault("storage.container", "peptide-backups")
	v.SetDefault("storage.secret_env", "AZURE_STORAGE_CONNECTION_STRING")
	v.SetDefault("storage.secret_path", "azure-blob-connection")
	v.SetDefault("storage.tier", "Cool")

	v.SetDefault("retention.daily_days", 14)
	v.SetDefault("retention.weekly_weeks", 8)
	v.SetDefault("retention.monthly_months", 6)
}
