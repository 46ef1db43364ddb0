package notify

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/St3phaneM1chon/peptide-backup/internal/command"
)

func TestDesktop_UsesPlatformNotifier(t *testing.T) {
	runner := &command.FakeRunner{}
	Desktop{Runner: runner}.Notify("Backup FAILED", "pg_dump exited 1")

	require.Len(t, runner.Calls, 1)
	cmd := runner.Calls[0]
	if runtime.GOOS == "darwin" {
		assert.Equal(t, "osascript", cmd.Name)
	} else {
		assert.Equal(t, "notify-send", cmd.Name)
	}
}

func TestDesktop_TruncatesAndEscapes(t *testing.T) {
	runner := &command.FakeRunner{}
	long := strings.Repeat("x", 500)
	Desktop{Runner: runner}.Notify(`with "quotes"`, long)

	require.Len(t, runner.Calls, 1)
	joined := strings.Join(runner.Calls[0].Args, " ")
	assert.NotContains(t, joined, strings.Repeat("x", 201))
}

func TestNoop_DoesNothing(t *testing.T) {
	Noop{}.Notify("a", "b")
}
