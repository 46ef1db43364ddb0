package command

import (
	"context"
	"os"
)

// Outcome is one canned result served by FakeRunner.
type Outcome struct {
	Result Result
	Err    error
	// DumpContent, when non-empty, is written to the path following a
	// "-f" argument, mimicking pg_dump writing its output file.
	DumpContent string
}

// FakeRunner serves queued Outcomes in order and records every Command
// it receives. Once the queue is empty it returns successful zero
// Results. Test-only.
type FakeRunner struct {
	Outcomes []Outcome
	Calls    []Command
}

var _ Runner = (*FakeRunner)(nil)

func (f *FakeRunner) Run(_ context.Context, cmd Command) (Result, error) {
	f.Calls = append(f.Calls, cmd)
	if len(f.Outcomes) == 0 {
		return Result{}, nil
	}
	o := f.Outcomes[0]
	f.Outcomes = f.Outcomes[1:]
	if o.DumpContent != "" {
		for i, arg := range cmd.Args {
			if arg == "-f" && i+1 < len(cmd.Args) {
				_ = os.WriteFile(cmd.Args[i+1], []byte(o.DumpContent), 0o644)
				break
			}
		}
	}
	return o.Result, o.Err
}

// Last returns the most recent Command, or a zero Command if none ran.
func (f *FakeRunner) Last() Command {
	if len(f.Calls) == 0 {
		return Command{}
	}
	return f.Calls[len(f.Calls)-1]
}
