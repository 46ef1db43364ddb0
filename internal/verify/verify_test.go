package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/St3phaneM1chon/peptide-backup/internal/archive"
)

func gzBackup(t *testing.T, name, content string) string {
	t.Helper()
	plain := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(plain, []byte(content), 0o644))
	gz, err := archive.Compress(plain)
	require.NoError(t, err)
	return gz
}

func TestFile_MissingIsError(t *testing.T) {
	report := File(filepath.Join(t.TempDir(), "absent.sql.gz"))
	assert.Equal(t, StatusError, report.Status)
	assert.Contains(t, report.Error, "not found")
}

func TestFile_EmptyIsAlwaysError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sql.gz")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	report := File(path)
	assert.Equal(t, StatusError, report.Status)
	assert.Equal(t, "file is empty", report.Error)
	assert.Empty(t, report.SHA256)
}

func TestFile_RecognizesDumpMarkers(t *testing.T) {
	content := "--\n-- PostgreSQL database dump\n--\nSET statement_timeout = 0;\nCREATE TABLE peptides (id serial);\n"
	gz := gzBackup(t, "local_20250601_080000.sql", content)

	report := File(gz)
	assert.Equal(t, StatusVerified, report.Status)
	assert.True(t, report.ValidContent)
	assert.NotEmpty(t, report.SHA256)
	assert.Contains(t, report.Preview, "PostgreSQL")
	assert.LessOrEqual(t, len(report.Preview), 200)
}

func TestFile_NoMarkersIsWarning(t *testing.T) {
	gz := gzBackup(t, "odd.sql", "hello world\nnothing dump-like here\n")

	report := File(gz)
	assert.Equal(t, StatusWarning, report.Status)
	assert.False(t, report.ValidContent)
	assert.NotEmpty(t, report.SHA256)
}

func TestFile_GarbageGzipIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.sql.gz")
	require.NoError(t, os.WriteFile(path, []byte("this is not gzip"), 0o644))

	report := File(path)
	assert.Equal(t, StatusError, report.Status)
}

func TestFile_UncompressedSkipsSniff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.sql")
	require.NoError(t, os.WriteFile(path, []byte("anything"), 0o644))

	report := File(path)
	assert.Equal(t, StatusVerified, report.Status)
	assert.True(t, report.ValidContent)
}

func TestChecksum_Stable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.sql")
	require.NoError(t, os.WriteFile(path, []byte("stable content"), 0o644))

	first, err := Checksum(path)
	require.NoError(t, err)
	second, err := Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}
