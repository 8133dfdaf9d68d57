package executil

import (
	"context"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors maps to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command lines to their output. The key is the command
	// name followed by its arguments (e.g., "git rev-parse HEAD"); a bare
	// command name (e.g., "git") acts as a fallback for any invocation.
	Outputs map[string][]byte

	// Errors maps command lines to their error, with the same key scheme.
	Errors map[string]error
}

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record("", cmd, args...)
}

// RunDir records the command with directory and returns configured output/error.
func (e *RecordingExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	return e.record(dir, cmd, args...)
}

func (e *RecordingExecutor) record(dir, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{
		Dir:  dir,
		Cmd:  cmd,
		Args: args,
	})

	line := strings.TrimSpace(cmd + " " + strings.Join(args, " "))

	var out []byte
	var err error

	if e.Outputs != nil {
		var ok bool
		if out, ok = e.Outputs[line]; !ok {
			out = e.Outputs[cmd]
		}
	}
	if e.Errors != nil {
		var ok bool
		if err, ok = e.Errors[line]; !ok {
			err = e.Errors[cmd]
		}
	}

	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
