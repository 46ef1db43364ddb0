package operations

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/St3phaneM1chon/peptide-backup/internal/archive"
	"github.com/St3phaneM1chon/peptide-backup/internal/database"
	"github.com/St3phaneM1chon/peptide-backup/internal/verify"
)

// Restore statuses.
const (
	RestoreStatusRestored = "restored"
	RestoreStatusError    = "error"
)

// RestoreResult reports one restore attempt. The hash is recorded for
// audit only; no stored expected hash exists at restore time.
type RestoreResult struct {
	File      string `json:"file"`
	Target    string `json:"target"`
	Timestamp string `json:"timestamp"`
	SHA256    string `json:"sha256,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Restore replays a backup file into the named target database. The
// decompressed temporary file is removed on every exit path. Replaying
// SQL into a live database is not transactional; a failure partway
// through is reported, not rolled back.
func (o *Operator) Restore(ctx context.Context, path, targetName string) RestoreResult {
	result := RestoreResult{
		File:      path,
		Target:    targetName,
		Timestamp: o.now().Format(time.RFC3339),
	}

	if _, err := os.Stat(path); err != nil {
		result.Status = RestoreStatusError
		result.Error = fmt.Sprintf("file not found: %s", path)
		return result
	}

	var target database.Target
	switch targetName {
	case "local":
		target = o.localTarget()
	case "production":
		url, err := o.productionURL(ctx)
		if err != nil {
			result.Status = RestoreStatusError
			result.Error = err.Error()
			return result
		}
		target = database.Target{URL: url}
	default:
		result.Status = RestoreStatusError
		result.Error = fmt.Sprintf("unknown target: %s", targetName)
		return result
	}

	sha, err := verify.Checksum(path)
	if err != nil {
		result.Status = RestoreStatusError
		result.Error = err.Error()
		return result
	}
	result.SHA256 = sha

	sqlPath := path
	if archive.IsCompressed(path) {
		sqlPath, err = archive.Decompress(path)
		if err != nil {
			result.Status = RestoreStatusError
			result.Error = fmt.Sprintf("decompress backup: %v", err)
			return result
		}
		defer os.Remove(sqlPath)
	}

	if err := o.engine.Restore(ctx, target, sqlPath, o.cfg.Backup.RestoreTimeout); err != nil {
		result.Status = RestoreStatusError
		result.Error = err.Error()
		return result
	}

	result.Status = RestoreStatusRestored
	return result
}
