// Package operations wires the dump engine, manifest store, retention
// policy, and secret providers into the commands the CLI exposes. Every
// operation returns a result struct with a status field; errors do not
// propagate past this boundary.
package operations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/St3phaneM1chon/peptide-backup/internal/command"
	"github.com/St3phaneM1chon/peptide-backup/internal/config"
	"github.com/St3phaneM1chon/peptide-backup/internal/database"
	"github.com/St3phaneM1chon/peptide-backup/internal/logger"
	"github.com/St3phaneM1chon/peptide-backup/internal/manifest"
	"github.com/St3phaneM1chon/peptide-backup/internal/notify"
	"github.com/St3phaneM1chon/peptide-backup/internal/retention"
	"github.com/St3phaneM1chon/peptide-backup/internal/secrets"
)

// backupGlob matches every stored backup file, and nothing else in the
// backup directory (the manifest is JSON).
const backupGlob = "*.sql.gz"

// ErrNoBackups indicates no backup file of the requested type exists.
var ErrNoBackups = errors.New("no backup found")

// ErrNoProductionURL indicates the production connection string could
// not be resolved from the environment or the secret provider.
var ErrNoProductionURL = errors.New("production database URL not found")

// Operator owns one invocation's worth of backup operations. It is
// strictly sequential; nothing here runs concurrently.
type Operator struct {
	cfg      config.Config
	log      logger.Logger
	runner   command.Runner
	engine   *database.Engine
	store    *manifest.Store
	env      secrets.Provider
	secrets  secrets.Provider
	notifier notify.Notifier
	now      func() time.Time
}

// Option overrides a default collaborator on the Operator.
type Option func(*Operator)

// WithRunner substitutes the external-process runner.
func WithRunner(r command.Runner) Option {
	return func(o *Operator) { o.runner = r }
}

// WithLogger substitutes the logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Operator) { o.log = log }
}

// WithSecrets sets the provider consulted for named secret paths
// (storage connection string, production URL fallback).
func WithSecrets(p secrets.Provider) Option {
	return func(o *Operator) { o.secrets = p }
}

// WithEnv substitutes the environment-variable provider.
func WithEnv(p secrets.Provider) Option {
	return func(o *Operator) { o.env = p }
}

// WithNotifier substitutes the failure notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Operator) { o.notifier = n }
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Operator) { o.now = now }
}

// New builds an Operator around cfg, creating the backup directory if
// needed.
func New(cfg config.Config, opts ...Option) (*Operator, error) {
	o := &Operator{
		cfg:      cfg,
		log:      logger.Global(),
		runner:   command.ExecRunner{},
		env:      secrets.Env{},
		notifier: notify.Noop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.engine = database.NewEngine(o.runner, o.log)
	o.store = manifest.NewStore(cfg.Backup.Directory)

	if err := os.MkdirAll(cfg.Backup.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory %q: %w", cfg.Backup.Directory, err)
	}
	return o, nil
}

// Manifest exposes the store for the CLI status path.
func (o *Operator) Manifest() *manifest.Manifest {
	return o.store.Load()
}

func (o *Operator) policy() retention.Policy {
	return retention.Policy{
		Daily:   o.cfg.Retention.DailyDays,
		Weekly:  o.cfg.Retention.WeeklyWeeks,
		Monthly: o.cfg.Retention.MonthlyMonths,
	}
}

func (o *Operator) localTarget() database.Target {
	return database.Target{
		Host:     o.cfg.Local.Host,
		Port:     o.cfg.Local.Port,
		Name:     o.cfg.Local.Name,
		User:     o.cfg.Local.User,
		Password: o.cfg.Local.Password,
	}
}

// productionURL resolves the production connection string: environment
// variable first, secret provider second.
func (o *Operator) productionURL(ctx context.Context) (string, error) {
	if url, err := o.env.Get(ctx, o.cfg.Production.URLEnv); err == nil {
		return url, nil
	}
	if o.secrets != nil && o.cfg.Production.SecretPath != "" {
		url, err := o.secrets.Get(ctx, o.cfg.Production.SecretPath)
		if err == nil {
			return url, nil
		}
		if !errors.Is(err, secrets.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", ErrNoProductionURL, err)
		}
	}
	return "", ErrNoProductionURL
}

// storageConnString resolves the blob-storage connection string the
// same way.
func (o *Operator) storageConnString(ctx context.Context) (string, error) {
	if conn, err := o.env.Get(ctx, o.cfg.Storage.SecretEnv); err == nil {
		return conn, nil
	}
	if o.secrets != nil && o.cfg.Storage.SecretPath != "" {
		conn, err := o.secrets.Get(ctx, o.cfg.Storage.SecretPath)
		if err == nil {
			return conn, nil
		}
	}
	return "", fmt.Errorf("storage connection string not found")
}

// LatestBackup returns the newest backup file of the given type by
// modification time.
func (o *Operator) LatestBackup(backupType string) (string, error) {
	pattern := filepath.Join(o.cfg.Backup.Directory, backupType+"_"+backupGlob)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob backups: %w", err)
	}

	var newest string
	var newestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: type %s", ErrNoBackups, backupType)
	}
	return newest, nil
}

func scrub(text, secret string) string {
	if secret != "" {
		text = strings.ReplaceAll(text, secret, "***")
	}
	return text
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
