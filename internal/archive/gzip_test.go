package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompress_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "dump.sql")
	content := "-- PostgreSQL database dump\nCREATE TABLE peptides (id serial);\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	gz, err := Compress(src)
	require.NoError(t, err)
	assert.Equal(t, src+".gz", gz)
	// Compress removes the original dump.
	_, statErr := os.Stat(src)
	assert.True(t, os.IsNotExist(statErr))

	out, err := Decompress(gz)
	require.NoError(t, err)
	assert.Equal(t, src, out)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	// Decompress keeps the compressed source.
	_, statErr = os.Stat(gz)
	assert.NoError(t, statErr)
}

func TestDecompress_RejectsPlainFile(t *testing.T) {
	_, err := Decompress("/tmp/backup.sql")
	assert.Error(t, err)
}

func TestIsCompressed(t *testing.T) {
	assert.True(t, IsCompressed("local_20250101_080000.sql.gz"))
	assert.False(t, IsCompressed("local_20250101_080000.sql"))
}
