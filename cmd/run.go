package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/St3phaneM1chon/peptide-backup/internal/command"
	"github.com/St3phaneM1chon/peptide-backup/internal/config"
	"github.com/St3phaneM1chon/peptide-backup/internal/logger"
	"github.com/St3phaneM1chon/peptide-backup/internal/manifest"
	"github.com/St3phaneM1chon/peptide-backup/internal/notify"
	"github.com/St3phaneM1chon/peptide-backup/internal/operations"
	"github.com/St3phaneM1chon/peptide-backup/internal/secrets"
	"github.com/St3phaneM1chon/peptide-backup/internal/verify"
)

// run dispatches the flag surface. At most one operation executes per
// invocation; --all is the composite that sequences several.
func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var cfg config.Config
	if err := cfg.Load(configFile); err != nil {
		return err
	}

	op, err := buildOperator(ctx, cfg)
	if err != nil {
		return err
	}

	switch {
	case flagStatus:
		return runStatus(op)
	case flagList:
		return runList(op)
	case flagProduction:
		return runProduction(ctx, op)
	case flagAzure:
		return runAzure(ctx, op)
	case flagAll:
		return runAll(ctx, op)
	case flagRestore != "":
		return runRestore(ctx, op, flagRestore)
	case flagRestoreLatest:
		return runRestoreLatest(ctx, op)
	case flagVerify != "":
		return runVerify(flagVerify)
	case flagCleanup:
		return runCleanup(op)
	default:
		// --local, or no operation flag at all.
		return runLocal(ctx, op)
	}
}

// buildOperator wires the real collaborators: exec runner, desktop
// notifier, and a Vault secret provider when one is configured.
func buildOperator(ctx context.Context, cfg config.Config) (*operations.Operator, error) {
	runner := command.ExecRunner{}
	opts := []operations.Option{
		operations.WithRunner(runner),
		operations.WithLogger(logger.Global()),
		operations.WithNotifier(notify.Desktop{Runner: runner}),
	}

	if cfg.Vault.Address != "" {
		vaultProvider, err := secrets.NewVault(ctx,
			secrets.WithAddress(cfg.Vault.Address),
			secrets.WithToken(cfg.Vault.Token),
			secrets.WithAppRole(cfg.Vault.RoleID, cfg.Vault.RoleName),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, operations.WithSecrets(vaultProvider))
	}

	return operations.New(cfg, opts...)
}

func runLocal(ctx context.Context, op *operations.Operator) error {
	rec := op.BackupLocal(ctx)
	if flagJSON {
		printJSON(rec)
	} else if rec.Status == manifest.StatusSuccess {
		fmt.Printf("Local backup OK: %s (%s)\n", rec.Filename, sizeMB(rec.SizeBytes))
		fmt.Printf("  SHA256: %.32s...\n", rec.SHA256)
	} else {
		fmt.Printf("Backup FAILED: %s\n", rec.Error)
	}
	if rec.Status != manifest.StatusSuccess {
		return fmt.Errorf("local backup failed")
	}
	return nil
}

func runProduction(ctx context.Context, op *operations.Operator) error {
	rec := op.BackupProduction(ctx)
	if flagJSON {
		printJSON(rec)
	} else if rec.Status == manifest.StatusSuccess {
		fmt.Printf("Production backup OK: %s (%s)\n", rec.Filename, sizeMB(rec.SizeBytes))
	} else {
		fmt.Printf("Production backup FAILED: %s\n", rec.Error)
	}
	if rec.Status != manifest.StatusSuccess {
		return fmt.Errorf("production backup failed")
	}
	return nil
}

func runAzure(ctx context.Context, op *operations.Operator) error {
	latest, err := op.LatestBackup(manifest.TypeLocal)
	if err != nil {
		latest, err = op.LatestBackup(manifest.TypeProduction)
	}
	if err != nil {
		return fmt.Errorf("no backup file found to upload")
	}

	result := op.Upload(ctx, latest)
	if flagJSON {
		printJSON(result)
	} else if result.Status == operations.UploadStatusUploaded {
		fmt.Printf("Uploaded: %s (%s)\n", result.Blob, sizeMB(result.SizeBytes))
	} else {
		fmt.Printf("Upload FAILED: %s\n", result.Error)
	}
	if result.Status != operations.UploadStatusUploaded {
		return fmt.Errorf("upload failed")
	}
	return nil
}

// allResult aggregates the composite cycle for --all --json.
type allResult struct {
	Local            manifest.Record          `json:"local"`
	Production       manifest.Record          `json:"production"`
	UploadLocal      *operations.UploadResult `json:"upload_local,omitempty"`
	UploadProduction *operations.UploadResult `json:"upload_production,omitempty"`
}

// runAll runs the full cycle sequentially. Each step reports on its
// own; one failure does not stop the later steps.
func runAll(ctx context.Context, op *operations.Operator) error {
	if !flagJSON {
		fmt.Println("Running full backup cycle...")
	}

	var out allResult
	out.Local = op.BackupLocal(ctx)
	if !flagJSON {
		fmt.Printf("  Local: %s (%s)\n", out.Local.Status, sizeMB(out.Local.SizeBytes))
	}

	out.Production = op.BackupProduction(ctx)
	if !flagJSON {
		fmt.Printf("  Production: %s (%s)\n", out.Production.Status, sizeMB(out.Production.SizeBytes))
	}

	if out.Local.Status == manifest.StatusSuccess {
		r := op.Upload(ctx, out.Local.File)
		out.UploadLocal = &r
		if !flagJSON {
			fmt.Printf("  Azure (local): %s\n", r.Status)
		}
	}
	if out.Production.Status == manifest.StatusSuccess {
		r := op.Upload(ctx, out.Production.File)
		out.UploadProduction = &r
		if !flagJSON {
			fmt.Printf("  Azure (prod): %s\n", r.Status)
		}
	}

	if flagJSON {
		printJSON(out)
	} else {
		fmt.Println("Full backup cycle complete.")
	}

	if out.Local.Status != manifest.StatusSuccess ||
		out.Production.Status != manifest.StatusSuccess {
		return fmt.Errorf("backup cycle completed with failures")
	}
	return nil
}

func runRestore(ctx context.Context, op *operations.Operator, path string) error {
	if flagTarget != "local" && flagTarget != "production" {
		return fmt.Errorf("invalid --target %q: must be local or production", flagTarget)
	}

	result := op.Restore(ctx, path, flagTarget)
	if flagJSON {
		printJSON(result)
	} else {
		fmt.Printf("Restore: %s\n", result.Status)
		if result.Error != "" {
			fmt.Printf("  Error: %s\n", result.Error)
		}
	}
	if result.Status != operations.RestoreStatusRestored {
		return fmt.Errorf("restore failed")
	}
	return nil
}

func runRestoreLatest(ctx context.Context, op *operations.Operator) error {
	latest, err := op.LatestBackup(manifest.TypeLocal)
	if err != nil {
		return fmt.Errorf("no local backup found to restore")
	}
	if !flagJSON {
		fmt.Printf("Restoring from: %s\n", filepath.Base(latest))
	}
	return runRestore(ctx, op, latest)
}

func runVerify(path string) error {
	report := verify.File(path)
	if flagJSON {
		printJSON(report)
	} else {
		fmt.Printf("Verification: %s\n", report.Status)
		fmt.Printf("  Size: %s\n", sizeMB(report.SizeBytes))
		fmt.Printf("  SHA256: %.32s...\n", report.SHA256)
		fmt.Printf("  Valid content: %v\n", report.ValidContent)
		if report.Error != "" {
			fmt.Printf("  Error: %s\n", report.Error)
		}
	}
	if report.Status == verify.StatusError {
		return fmt.Errorf("verification failed")
	}
	return nil
}

func runCleanup(op *operations.Operator) error {
	report, err := op.Cleanup()
	if flagJSON {
		printJSON(report)
	} else {
		fmt.Printf("Cleanup: removed %d backups, freed %s\n", report.Removed, sizeMB(report.FreedBytes))
		fmt.Printf("  Kept: %d backups\n", report.Kept)
	}
	return err
}

func runStatus(op *operations.Operator) error {
	report := op.Status()
	if flagJSON {
		printJSON(report)
		return nil
	}

	fmt.Println("\nPeptide-Plus DB Backup Status")
	fmt.Println("==================================================")
	fmt.Printf("  Health: %s - %s\n", report.Health, report.Message)
	fmt.Printf("  Backups: %d total (%d local, %d prod)\n",
		report.Counts.Total, report.Counts.Local, report.Counts.Production)
	fmt.Printf("  Size: %s\n", sizeMB(report.TotalSizeBytes))
	if report.Latest.LocalHoursAgo != nil {
		fmt.Printf("  Last local: %.1fh ago\n", *report.Latest.LocalHoursAgo)
	}
	if report.Latest.ProductionHoursAgo != nil {
		fmt.Printf("  Last production: %.1fh ago\n", *report.Latest.ProductionHoursAgo)
	}
	fmt.Printf("  Dir: %s\n", report.BackupDir)
	return nil
}

func runList(op *operations.Operator) error {
	list := op.List()
	if flagJSON {
		printJSON(list)
		return nil
	}

	fmt.Printf("\nBackups (%d):\n", len(list))
	fmt.Println("----------------------------------------------------------------------")
	for _, b := range list {
		fmt.Printf("  %s  %-45s  %10s  (%dd)\n", b.Date, b.Name, sizeMB(b.SizeBytes), b.AgeDays)
	}
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func sizeMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}
