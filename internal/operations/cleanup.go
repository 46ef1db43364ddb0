package operations

import (
	"github.com/St3phaneM1chon/peptide-backup/internal/manifest"
	"github.com/St3phaneM1chon/peptide-backup/internal/retention"
)

// Cleanup sweeps the backup directory under the retention policy.
// last_cleanup advances whether or not anything was removed.
func (o *Operator) Cleanup() (retention.Report, error) {
	now := o.now()
	report, sweepErr := o.policy().Sweep(o.cfg.Backup.Directory, backupGlob, now)

	if err := o.store.Update(func(m *manifest.Manifest) {
		m.LastCleanup = now
	}); err != nil {
		o.log.Error("manifest update failed", "error", err.Error())
	}

	if report.Removed > 0 {
		o.log.Info("cleanup removed old backups",
			"removed", report.Removed,
			"kept", report.Kept,
			"freed_bytes", report.FreedBytes,
		)
	}
	return report, sweepErr
}
