package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/St3phaneM1chon/peptide-backup/internal/logger"
)

var (
	configFile string

	flagLocal         bool
	flagProduction    bool
	flagAzure         bool
	flagAll           bool
	flagStatus        bool
	flagList          bool
	flagRestore       string
	flagRestoreLatest bool
	flagTarget        string
	flagVerify        string
	flagCleanup       bool
	flagJSON          bool

	// rootCmd carries the whole flag surface; the tool is driven by
	// flags rather than subcommands so a scheduler entry stays a single
	// argv. Bare invocation backs up the local database.
	rootCmd = &cobra.Command{
		Use:   "peptide-backup",
		Short: "Backup, restore and retention for the peptide-plus database",
		Long: `peptide-backup dumps the peptide-plus PostgreSQL database (local
Docker instance or production), compresses and hashes the result,
uploads to blob storage, and applies the retention policy.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

// Execute runs the root command.
func Execute() {
	log, err := logger.Init()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "error", err.Error())
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	rootCmd.PersistentFlags().
		StringVarP(&configFile, "config", "c", "", "path to YAML config file")

	f.BoolVar(&flagLocal, "local", false, "backup the local Docker database")
	f.BoolVar(&flagProduction, "production", false, "backup the production database")
	f.BoolVar(&flagAzure, "azure", false, "upload the latest backup to blob storage")
	f.BoolVar(&flagAll, "all", false, "full cycle: local + production + upload")
	f.BoolVar(&flagStatus, "status", false, "show backup status")
	f.BoolVar(&flagList, "list", false, "list all backups")
	f.StringVar(&flagRestore, "restore", "", "restore from the given backup file")
	f.BoolVar(&flagRestoreLatest, "restore-latest", false, "restore from the latest local backup")
	f.StringVar(&flagTarget, "target", "local", "restore target: local or production")
	f.StringVar(&flagVerify, "verify", "", "verify integrity of the given backup file")
	f.BoolVar(&flagCleanup, "cleanup", false, "remove old backups per retention policy")
	f.BoolVar(&flagJSON, "json", false, "JSON output")
}
