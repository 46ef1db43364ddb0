package operations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/St3phaneM1chon/peptide-backup/internal/command"
)

// Upload statuses.
const (
	UploadStatusUploaded = "uploaded"
	UploadStatusError    = "error"
)

// UploadResult reports one blob-storage upload attempt.
type UploadResult struct {
	Status    string `json:"status"`
	Blob      string `json:"blob,omitempty"`
	Container string `json:"container,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Upload pushes a backup file to blob storage through the az CLI. The
// connection string comes from the secret provider and is scrubbed
// from any error text.
func (o *Operator) Upload(ctx context.Context, path string) UploadResult {
	conn, err := o.storageConnString(ctx)
	if err != nil {
		return UploadResult{Status: UploadStatusError, Error: err.Error()}
	}

	info, err := os.Stat(path)
	if err != nil {
		return UploadResult{Status: UploadStatusError, Error: fmt.Sprintf("file not found: %s", path)}
	}

	blobName := filepath.Base(path)
	env := []string{"AZURE_STORAGE_CONNECTION_STRING=" + conn}

	// Make sure the container exists; an already-exists outcome is fine.
	_, _ = o.runner.Run(ctx, command.Command{
		Name: "az",
		Args: []string{
			"storage", "container", "create",
			"--name", o.cfg.Storage.Container,
			"--public-access", "off",
		},
		Env:     env,
		Timeout: 30 * time.Second,
	})

	o.log.Info("upload started",
		"blob", blobName,
		"container", o.cfg.Storage.Container,
		"size_bytes", info.Size(),
	)

	res, err := o.runner.Run(ctx, command.Command{
		Name: "az",
		Args: []string{
			"storage", "blob", "upload",
			"--container-name", o.cfg.Storage.Container,
			"--file", path,
			"--name", blobName,
			"--overwrite", "true",
			"--tier", o.cfg.Storage.Tier,
		},
		Env:     env,
		Timeout: o.cfg.Backup.UploadTimeout,
	})
	if err != nil {
		msg := scrub(err.Error(), conn)
		if errors.Is(err, command.ErrNotFound) {
			msg = "az CLI not found: install azure-cli"
		}
		return UploadResult{Status: UploadStatusError, Error: msg}
	}
	if res.ExitCode != 0 {
		return UploadResult{
			Status: UploadStatusError,
			Error:  scrub(truncate(res.Stderr, 500), conn),
		}
	}

	o.log.Info("upload completed", "blob", blobName)
	return UploadResult{
		Status:    UploadStatusUploaded,
		Blob:      blobName,
		Container: o.cfg.Storage.Container,
		SizeBytes: info.Size(),
	}
}
