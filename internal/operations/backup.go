package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/St3phaneM1chon/peptide-backup/internal/archive"
	"github.com/St3phaneM1chon/peptide-backup/internal/command"
	"github.com/St3phaneM1chon/peptide-backup/internal/database"
	"github.com/St3phaneM1chon/peptide-backup/internal/manifest"
	"github.com/St3phaneM1chon/peptide-backup/internal/verify"
)

// BackupLocal dumps the Docker-hosted database into a timestamped
// .sql.gz file. Every attempt, failed or not, lands in the manifest;
// last_local moves only on success.
func (o *Operator) BackupLocal(ctx context.Context) manifest.Record {
	target := o.localTarget()
	rec := manifest.Record{
		Type:      manifest.TypeLocal,
		Timestamp: o.now().Format(o.cfg.Backup.TimestampFormat),
		Source:    target.Describe(),
	}

	o.warnIfContainerDown(ctx)

	return o.produce(ctx, rec, target, o.cfg.Backup.LocalTimeout)
}

// BackupProduction dumps the production database via its connection
// string. The string never appears in the record, the logs, or any
// error text.
func (o *Operator) BackupProduction(ctx context.Context) manifest.Record {
	rec := manifest.Record{
		Type:      manifest.TypeProduction,
		Timestamp: o.now().Format(o.cfg.Backup.TimestampFormat),
	}

	url, err := o.productionURL(ctx)
	if err != nil {
		rec.Status = manifest.StatusError
		rec.Error = err.Error()
		o.appendRecord(rec)
		return rec
	}
	rec.Source = "production"

	return o.produce(ctx, rec, database.Target{URL: url}, o.cfg.Backup.ProductionTimeout)
}

// produce is the shared dump pipeline: pg_dump to a temporary .sql
// file, gzip it, hash and measure the result, record the attempt.
func (o *Operator) produce(
	ctx context.Context,
	rec manifest.Record,
	target database.Target,
	timeout time.Duration,
) manifest.Record {
	dumpPath := filepath.Join(
		o.cfg.Backup.Directory,
		fmt.Sprintf("%s_%s.sql", rec.Type, rec.Timestamp),
	)

	if err := o.engine.Dump(ctx, target, dumpPath, timeout); err != nil {
		// No partial file survives a failed dump.
		os.Remove(dumpPath)
		rec.Status = manifest.StatusError
		rec.Error = err.Error()
		o.notifier.Notify("Peptide-Plus Backup FAILED", rec.Error)
		o.appendRecord(rec)
		return rec
	}

	gzPath, err := archive.Compress(dumpPath)
	if err != nil {
		os.Remove(dumpPath)
		rec.Status = manifest.StatusError
		rec.Error = fmt.Sprintf("compress dump: %v", err)
		o.appendRecord(rec)
		return rec
	}

	sha, err := verify.Checksum(gzPath)
	if err != nil {
		rec.Status = manifest.StatusError
		rec.Error = fmt.Sprintf("hash backup: %v", err)
		o.appendRecord(rec)
		return rec
	}

	info, err := os.Stat(gzPath)
	if err != nil {
		rec.Status = manifest.StatusError
		rec.Error = fmt.Sprintf("stat backup: %v", err)
		o.appendRecord(rec)
		return rec
	}

	rec.Status = manifest.StatusSuccess
	rec.File = gzPath
	rec.Filename = filepath.Base(gzPath)
	rec.SizeBytes = info.Size()
	rec.SHA256 = sha

	o.appendRecord(rec)

	o.log.Info("backup completed",
		"type", rec.Type,
		"file", rec.Filename,
		"size_bytes", rec.SizeBytes,
		"sha256", sha[:16],
	)
	return rec
}

// appendRecord writes the attempt into the manifest and advances the
// per-type last-success timestamp when it applies.
func (o *Operator) appendRecord(rec manifest.Record) {
	err := o.store.Update(func(m *manifest.Manifest) {
		m.Backups = append(m.Backups, rec)
		if rec.Status != manifest.StatusSuccess {
			return
		}
		switch rec.Type {
		case manifest.TypeLocal:
			m.LastLocal = o.now()
		case manifest.TypeProduction:
			m.LastProduction = o.now()
		}
	})
	if err != nil {
		o.log.Error("manifest update failed", "error", err.Error())
	}
}

// warnIfContainerDown peeks at docker ps before a local dump. Purely
// advisory; the dump proceeds either way.
func (o *Operator) warnIfContainerDown(ctx context.Context) {
	res, err := o.runner.Run(ctx, command.Command{
		Name:    "docker",
		Args:    []string{"ps", "--format", "{{.Names}}"},
		Timeout: 10 * time.Second,
	})
	if err != nil || res.ExitCode != 0 {
		return
	}
	names := strings.ToLower(res.Stdout)
	if !strings.Contains(names, "peptide") && !strings.Contains(names, "postgres") {
		o.log.Warn("postgres docker container may not be running")
	}
}
