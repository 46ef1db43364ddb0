package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/St3phaneM1chon/peptide-backup/internal/archive"
	"github.com/St3phaneM1chon/peptide-backup/internal/command"
	"github.com/St3phaneM1chon/peptide-backup/internal/config"
	"github.com/St3phaneM1chon/peptide-backup/internal/secrets"
	"github.com/St3phaneM1chon/peptide-backup/internal/verify"
)

func writeGzBackup(t *testing.T, cfg config.Config, name, content string) string {
	t.Helper()
	plain := filepath.Join(cfg.Backup.Directory, name)
	require.NoError(t, os.WriteFile(plain, []byte(content), 0o644))
	gz, err := archive.Compress(plain)
	require.NoError(t, err)
	return gz
}

func TestRestore_FileMissing(t *testing.T) {
	cfg := testConfig(t)
	runner := &command.FakeRunner{}
	op := newTestOperator(t, cfg, runner)

	result := op.Restore(context.Background(), filepath.Join(cfg.Backup.Directory, "absent.sql.gz"), "local")

	assert.Equal(t, RestoreStatusError, result.Status)
	assert.Contains(t, result.Error, "file not found")
	// Fatal before any side effect.
	assert.Empty(t, runner.Calls)
}

func TestRestore_LocalSuccessCleansTempFile(t *testing.T) {
	cfg := testConfig(t)
	gz := writeGzBackup(t, cfg, "local_20250601_080000.sql", dumpSQL)
	runner := &command.FakeRunner{}
	op := newTestOperator(t, cfg, runner)

	result := op.Restore(context.Background(), gz, "local")

	require.Equal(t, RestoreStatusRestored, result.Status)
	assert.NotEmpty(t, result.SHA256)

	// psql ran against the decompressed temporary file.
	cmd := runner.Last()
	assert.Equal(t, "psql", cmd.Name)
	sqlPath := filepath.Join(cfg.Backup.Directory, "local_20250601_080000.sql")
	assert.Contains(t, cmd.Args, sqlPath)

	// The temporary file is gone, the compressed backup untouched.
	_, err := os.Stat(sqlPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(gz)
	assert.NoError(t, err)
}

func TestRestore_FailureStillCleansTempFile(t *testing.T) {
	cfg := testConfig(t)
	gz := writeGzBackup(t, cfg, "local_20250601_080000.sql", dumpSQL)
	runner := &command.FakeRunner{Outcomes: []command.Outcome{
		{Result: command.Result{ExitCode: 2, Stderr: "ERROR: syntax error"}},
	}}
	op := newTestOperator(t, cfg, runner)

	result := op.Restore(context.Background(), gz, "local")

	assert.Equal(t, RestoreStatusError, result.Status)
	assert.Contains(t, result.Error, "syntax error")

	_, err := os.Stat(filepath.Join(cfg.Backup.Directory, "local_20250601_080000.sql"))
	assert.True(t, os.IsNotExist(err))
}

func TestRestore_ProductionURLMissing(t *testing.T) {
	cfg := testConfig(t)
	gz := writeGzBackup(t, cfg, "production_20250601_080000.sql", dumpSQL)
	runner := &command.FakeRunner{}
	op := newTestOperator(t, cfg, runner)

	result := op.Restore(context.Background(), gz, "production")

	assert.Equal(t, RestoreStatusError, result.Status)
	assert.Contains(t, result.Error, "production database URL not found")
	// No restore was attempted.
	assert.Empty(t, runner.Calls)
}

func TestRestore_UnknownTarget(t *testing.T) {
	cfg := testConfig(t)
	gz := writeGzBackup(t, cfg, "local_20250601_080000.sql", dumpSQL)
	op := newTestOperator(t, cfg, &command.FakeRunner{})

	result := op.Restore(context.Background(), gz, "staging")
	assert.Equal(t, RestoreStatusError, result.Status)
	assert.Contains(t, result.Error, "unknown target")
}

// A backup with no recognizable dump markers restores anyway; only
// --verify flags it.
func TestRestore_DoesNotDependOnContentSniff(t *testing.T) {
	cfg := testConfig(t)
	gz := writeGzBackup(t, cfg, "local_20250601_080000.sql", "nothing dump-like\n")
	runner := &command.FakeRunner{}
	op := newTestOperator(t, cfg, runner)

	report := verify.File(gz)
	assert.Equal(t, verify.StatusWarning, report.Status)

	result := op.Restore(context.Background(), gz, "local")
	assert.Equal(t, RestoreStatusRestored, result.Status)
}

func TestRestore_ProductionUsesResolvedURL(t *testing.T) {
	cfg := testConfig(t)
	gz := writeGzBackup(t, cfg, "production_20250601_080000.sql", dumpSQL)
	url := "postgres://u:p@prod.example.com/peptide"
	runner := &command.FakeRunner{}
	op := newTestOperator(t, cfg, runner,
		WithEnv(secrets.Static{"DATABASE_URL": url}))

	result := op.Restore(context.Background(), gz, "production")

	require.Equal(t, RestoreStatusRestored, result.Status)
	assert.Contains(t, runner.Last().Args, url)
}
