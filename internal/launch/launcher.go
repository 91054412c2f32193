// Package launch starts emulator processes from synthesized command lines.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrEmptyCommand is returned when there is nothing to run.
var ErrEmptyCommand = errors.New("command line is empty")

// Invoker runs a command line in a working directory.
// An empty working directory means the current one.
type Invoker interface {
	Launch(ctx context.Context, commandLine, workingDirectory string) error
}

// Error reports a launch that could not be started.
type Error struct {
	CommandLine      string
	WorkingDirectory string
	Err              error
}

func (e *Error) Error() string {
	if e.WorkingDirectory != "" {
		return fmt.Sprintf("failed to launch %s in %s: %v", e.CommandLine, e.WorkingDirectory, e.Err)
	}
	return fmt.Sprintf("failed to launch %s: %v", e.CommandLine, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ProcessInvoker starts each command as a detached OS process and does not
// wait for it. Output is discarded.
type ProcessInvoker struct {
	// Shell overrides the interpreter used to run the command line.
	// Defaults to /bin/sh on Unix; on Windows the command line is passed
	// to CreateProcess unless a shell is set.
	Shell string
}

// NewProcessInvoker creates a ProcessInvoker.
func NewProcessInvoker(shell string) *ProcessInvoker {
	return &ProcessInvoker{Shell: shell}
}

// Launch starts commandLine and returns as soon as the process exists.
// The context only guards the start; a running emulator is never killed.
func (p *ProcessInvoker) Launch(ctx context.Context, commandLine, workingDirectory string) error {
	fail := func(err error) error {
		return &Error{CommandLine: commandLine, WorkingDirectory: workingDirectory, Err: err}
	}

	if strings.TrimSpace(commandLine) == "" {
		return fail(ErrEmptyCommand)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if workingDirectory != "" {
		info, err := os.Stat(workingDirectory)
		if err != nil {
			return fail(err)
		}
		if !info.IsDir() {
			return fail(fmt.Errorf("%s is not a directory", workingDirectory))
		}
	}

	// The shell would start even when the emulator is missing
	if err := checkExecutable(commandLine, workingDirectory); err != nil {
		return fail(err)
	}

	cmd := p.command(commandLine)
	cmd.Dir = workingDirectory

	if err := cmd.Start(); err != nil {
		return fail(err)
	}

	pid := cmd.Process.Pid
	zap.L().Info("launched emulator",
		zap.Int("pid", pid),
		zap.String("command", commandLine),
		zap.String("dir", workingDirectory))

	// Reap in the background so the child does not linger as a zombie.
	go func() {
		err := cmd.Wait()
		zap.L().Debug("emulator exited", zap.Int("pid", pid), zap.Error(err))
	}()

	return nil
}

// executableToken returns the first token of a command line: the quoted
// executable without its quotes, or everything up to the first space.
func executableToken(commandLine string) string {
	s := strings.TrimLeft(commandLine, " \t")
	if strings.HasPrefix(s, `"`) {
		if end := strings.Index(s[1:], `"`); end >= 0 {
			return s[1 : end+1]
		}
		return s[1:]
	}
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

// checkExecutable reports whether the first token of commandLine names a
// runnable file. Relative paths are taken from workingDirectory and bare
// names are looked up in PATH.
func checkExecutable(commandLine, workingDirectory string) error {
	name := executableToken(commandLine)
	if name == "" {
		return ErrEmptyCommand
	}
	if strings.ContainsAny(name, `/\`) && !filepath.IsAbs(name) && workingDirectory != "" {
		name = filepath.Join(workingDirectory, name)
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("executable %s: %w", executableToken(commandLine), err)
	}
	return nil
}

// Call is one recorded launch.
type Call struct {
	CommandLine      string
	WorkingDirectory string
}

// Recorder is an Invoker that records calls instead of starting processes.
// Err, when set, is returned from every Launch.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

// Launch records the call.
func (r *Recorder) Launch(_ context.Context, commandLine, workingDirectory string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{CommandLine: commandLine, WorkingDirectory: workingDirectory})
	if r.Err != nil {
		return &Error{CommandLine: commandLine, WorkingDirectory: workingDirectory, Err: r.Err}
	}
	return nil
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Call, len(r.calls))
	copy(result, r.calls)
	return result
}

// Last returns the most recent call.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}
