// Package archive handles the gzip framing of dump files. Backups are
// stored as <type>_<timestamp>.sql.gz.
package archive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Suffix is the extension appended to compressed dumps.
const Suffix = ".gz"

// IsCompressed reports whether path looks like a gzip-framed backup.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, Suffix)
}

// Compress gzips inputPath into inputPath+".gz" and removes the
// original on success.
func Compress(inputPath string) (string, error) {
	outputPath := inputPath + Suffix

	inFile, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("open input file: %w", err)
	}
	defer inFile.Close()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer outFile.Close()

	writer := gzip.NewWriter(outFile)
	if _, err := io.Copy(writer, inFile); err != nil {
		writer.Close()
		return "", fmt.Errorf("compress file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize gzip stream: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return "", fmt.Errorf("close output file: %w", err)
	}

	inFile.Close()
	if err := os.Remove(inputPath); err != nil {
		return "", fmt.Errorf("remove original file: %w", err)
	}

	return outputPath, nil
}

// Decompress expands inputPath next to itself with the ".gz" suffix
// stripped, keeping the source file. The caller owns the result and is
// expected to delete it when done.
func Decompress(inputPath string) (string, error) {
	outputPath := strings.TrimSuffix(inputPath, Suffix)
	if outputPath == inputPath {
		return "", fmt.Errorf("not a %s file: %s", Suffix, inputPath)
	}

	inFile, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("open input file: %w", err)
	}
	defer inFile.Close()

	reader, err := gzip.NewReader(inFile)
	if err != nil {
		return "", fmt.Errorf("open gzip stream: %w", err)
	}
	defer reader.Close()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, reader); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("decompress file: %w", err)
	}

	return outputPath, nil
}
