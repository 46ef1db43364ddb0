// Package notify raises best-effort desktop alerts when a scheduled
// backup fails. Delivery failures are swallowed: an alerting problem
// must never fail the backup itself.
package notify

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/St3phaneM1chon/peptide-backup/internal/command"
)

const (
	titleLimit   = 100
	messageLimit = 200
)

// Notifier delivers a short operator alert.
type Notifier interface {
	Notify(title, message string)
}

// Noop discards notifications. Used in tests and headless runs.
type Noop struct{}

func (Noop) Notify(string, string) {}

// Desktop delivers via the platform notifier binary: osascript on
// macOS, notify-send elsewhere.
type Desktop struct {
	Runner command.Runner
}

var _ Notifier = Desktop{}

func (d Desktop) Notify(title, message string) {
	title = sanitize(title, titleLimit)
	message = sanitize(message, messageLimit)

	var cmd command.Command
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf(`display notification "%s" with title "%s" sound name "Glass"`, message, title)
		cmd = command.Command{Name: "osascript", Args: []string{"-e", script}}
	} else {
		cmd = command.Command{Name: "notify-send", Args: []string{title, message}}
	}
	cmd.Timeout = 5 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()
	_, _ = d.Runner.Run(ctx, cmd)
}

func sanitize(s string, limit int) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
