package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Load(""))

	assert.Equal(t, "./backups", cfg.Backup.Directory)
	assert.Equal(t, "20060102_150405", cfg.Backup.TimestampFormat)
	assert.Equal(t, 5*time.Minute, cfg.Backup.LocalTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Backup.ProductionTimeout)
	assert.Equal(t, "5433", cfg.Local.Port)
	assert.Equal(t, "DATABASE_URL", cfg.Production.URLEnv)
	assert.Equal(t, 14, cfg.Retention.DailyDays)
	assert.Equal(t, 8, cfg.Retention.WeeklyWeeks)
	assert.Equal(t, 6, cfg.Retention.MonthlyMonths)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	yaml := `
backup:
  directory: "/var/backups/peptide"
  local_timeout: 2m
local:
  host: "db.example.com"
  port: "5432"
retention:
  daily_days: 7
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	var cfg Config
	require.NoError(t, cfg.Load(path))

	assert.Equal(t, "/var/backups/peptide", cfg.Backup.Directory)
	assert.Equal(t, 2*time.Minute, cfg.Backup.LocalTimeout)
	assert.Equal(t, "db.example.com", cfg.Local.Host)
	assert.Equal(t, 7, cfg.Retention.DailyDays)
	// Untouched keys keep their defaults.
	assert.Equal(t, "peptide_plus", cfg.Local.Name)
	assert.Equal(t, 6, cfg.Retention.MonthlyMonths)
}

func TestLoad_MissingFileFails(t *testing.T) {
	var cfg Config
	err := cfg.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrLoadConfig)
}

func TestValidate_RejectsBadRetention(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Load(""))
	cfg.Retention.WeeklyWeeks = 0
	assert.ErrorIs(t, cfg.Validate(), ErrValidateConfig)
}
