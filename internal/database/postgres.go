package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/St3phaneM1chon/peptide-backup/internal/command"
	"github.com/St3phaneM1chon/peptide-backup/internal/logger"
)

// stderrLimit bounds how much tool output is carried into error text.
const stderrLimit = 500

// Target identifies one PostgreSQL database, either by a full
// connection string (production) or by discrete parameters (local).
type Target struct {
	// URL, when set, takes precedence over the discrete fields. It is a
	// secret and never appears in logs or error text.
	URL string

	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Describe returns a loggable source descriptor with no credentials.
func (t Target) Describe() string {
	if t.URL != "" {
		return "connection-string"
	}
	return fmt.Sprintf("%s:%s/%s", t.Host, t.Port, t.Name)
}

// scrub strips the target's secrets from tool output before it is
// surfaced anywhere.
func (t Target) scrub(text string) string {
	if t.URL != "" {
		text = strings.ReplaceAll(text, t.URL, "***")
	}
	if t.Password != "" {
		text = strings.ReplaceAll(text, t.Password, "***")
	}
	return text
}

// Engine invokes the PostgreSQL client tools against a Target. All
// process execution goes through the injected Runner.
type Engine struct {
	runner command.Runner
	log    logger.Logger
}

func NewEngine(runner command.Runner, log logger.Logger) *Engine {
	return &Engine{runner: runner, log: log}
}

// Dump runs pg_dump against the target, writing plain SQL to outPath.
// Ownership and ACL statements are omitted so the dump replays across
// environments.
func (e *Engine) Dump(ctx context.Context, t Target, outPath string, timeout time.Duration) error {
	cmd := command.Command{
		Name:    "pg_dump",
		Timeout: timeout,
	}
	if t.URL != "" {
		cmd.Args = []string{t.URL, "--no-owner", "--no-acl", "-f", outPath}
	} else {
		cmd.Args = []string{
			"-h", t.Host,
			"-p", t.Port,
			"-U", t.User,
			"-d", t.Name,
			"--no-owner", "--no-acl",
			"-f", outPath,
		}
		cmd.Env = []string{"PGPASSWORD=" + t.Password}
	}

	e.log.Info("dump started", "source", t.Describe(), "path", outPath)
	start := time.Now()

	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		return e.classify(ErrBackupFailed, t, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: pg_dump exit %d: %s",
			ErrBackupFailed, res.ExitCode, t.scrub(truncate(res.Stderr, stderrLimit)))
	}

	e.log.Info("dump completed",
		"source", t.Describe(),
		"path", outPath,
		"duration", time.Since(start).String(),
	)
	return nil
}

// Restore replays a plain-SQL file into the target with psql. The
// statements apply as they execute; a mid-file failure leaves the
// database partially restored, and the error reports that.
func (e *Engine) Restore(ctx context.Context, t Target, sqlPath string, timeout time.Duration) error {
	cmd := command.Command{
		Name:    "psql",
		Timeout: timeout,
	}
	if t.URL != "" {
		cmd.Args = []string{t.URL, "-f", sqlPath}
	} else {
		cmd.Args = []string{
			"-h", t.Host,
			"-p", t.Port,
			"-U", t.User,
			"-d", t.Name,
			"-f", sqlPath,
		}
		cmd.Env = []string{"PGPASSWORD=" + t.Password}
	}

	e.log.Info("restore started", "target", t.Describe(), "source", sqlPath)
	start := time.Now()

	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		return e.classify(ErrRestoreFailed, t, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: psql exit %d (database may be partially restored): %s",
			ErrRestoreFailed, res.ExitCode, t.scrub(truncate(res.Stderr, stderrLimit)))
	}

	e.log.Info("restore completed",
		"target", t.Describe(),
		"source", sqlPath,
		"duration", time.Since(start).String(),
	)
	return nil
}

// classify maps runner-level failures onto the package error taxonomy.
func (e *Engine) classify(op error, t Target, err error) error {
	switch {
	case errors.Is(err, command.ErrNotFound):
		return fmt.Errorf("%w: %v (install the postgresql client tools)", ErrToolNotFound, err)
	case errors.Is(err, command.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %s", op, t.scrub(err.Error()))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
