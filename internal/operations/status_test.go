package operations

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/St3phaneM1chon/peptide-backup/internal/command"
	"github.com/St3phaneM1chon/peptide-backup/internal/config"
)

func touchBackup(t *testing.T, cfg config.Config, name string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(cfg.Backup.Directory, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestStatus_NoBackupsIsCritical(t *testing.T) {
	cfg := testConfig(t)
	op := newTestOperator(t, cfg, &command.FakeRunner{})

	report := op.Status()

	assert.Equal(t, HealthCritical, report.Health)
	assert.Equal(t, 0, report.Counts.Total)
	assert.Nil(t, report.Latest.LocalHoursAgo)
	assert.Nil(t, report.Latest.ProductionHoursAgo)
}

func TestStatus_FreshLocalIsOK(t *testing.T) {
	cfg := testConfig(t)
	touchBackup(t, cfg, "local_20250601_060000.sql.gz", fixedNow.Add(-2*time.Hour))
	op := newTestOperator(t, cfg, &command.FakeRunner{})

	report := op.Status()

	assert.Equal(t, HealthOK, report.Health)
	assert.Equal(t, 1, report.Counts.Local)
	require.NotNil(t, report.Latest.LocalHoursAgo)
	assert.InDelta(t, 2.0, *report.Latest.LocalHoursAgo, 0.01)
}

func TestStatus_StaleLocalIsWarning(t *testing.T) {
	cfg := testConfig(t)
	touchBackup(t, cfg, "local_20250531_070000.sql.gz", fixedNow.Add(-25*time.Hour))
	op := newTestOperator(t, cfg, &command.FakeRunner{})

	report := op.Status()

	assert.Equal(t, HealthWarning, report.Health)
	assert.Contains(t, report.Message, ">24h")
}

func TestStatus_CountsPerType(t *testing.T) {
	cfg := testConfig(t)
	touchBackup(t, cfg, "local_20250601_060000.sql.gz", fixedNow.Add(-2*time.Hour))
	touchBackup(t, cfg, "local_20250531_060000.sql.gz", fixedNow.Add(-26*time.Hour))
	touchBackup(t, cfg, "production_20250601_060000.sql.gz", fixedNow.Add(-2*time.Hour))
	op := newTestOperator(t, cfg, &command.FakeRunner{})

	report := op.Status()

	assert.Equal(t, 3, report.Counts.Total)
	assert.Equal(t, 2, report.Counts.Local)
	assert.Equal(t, 1, report.Counts.Production)
	assert.Greater(t, report.TotalSizeBytes, int64(0))
	require.NotNil(t, report.Latest.ProductionHoursAgo)
}

func TestList_NewestFirst(t *testing.T) {
	cfg := testConfig(t)
	touchBackup(t, cfg, "local_20250530_080000.sql.gz", fixedNow.AddDate(0, 0, -2))
	touchBackup(t, cfg, "local_20250601_060000.sql.gz", fixedNow.Add(-2*time.Hour))
	op := newTestOperator(t, cfg, &command.FakeRunner{})

	list := op.List()

	require.Len(t, list, 2)
	assert.Equal(t, "local_20250601_060000.sql.gz", list[0].Name)
	assert.Equal(t, "local_20250530_080000.sql.gz", list[1].Name)
	assert.Equal(t, 0, list[0].AgeDays)
	assert.Equal(t, 2, list[1].AgeDays)
}
