package proc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/josephlewis42/osh/core/shell"
)

const (
	// StatusNotFound is reported for a foreground head that could not be
	// executed.
	StatusNotFound = 127
	// StatusFailed is reported for a foreground head that could not be set up.
	StatusFailed = 1

	redirectPerms = 0644
)

// Launched records a process started for a stage.
type Launched struct {
	PID  int
	Args []string
}

// Status is the outcome of running one chain.
type Status struct {
	// Code is the head's exit status, zero for background chains.
	Code       int
	Background bool
	// Launched lists the started stages, source first.
	Launched []Launched
	// Failures lists stages that were reported and skipped.
	Failures []*ProcessError
}

// Launcher starts command chains as child processes.
type Launcher struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// Env is the child environment, nil inherits the shell's.
	Env []string
	// Dir is the child working directory, empty inherits the shell's.
	Dir string

	Jobs *JobTable
}

// NewLauncher creates a launcher wired to the shell's own standard files.
func NewLauncher() *Launcher {
	return &Launcher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Jobs:   NewJobTable(),
	}
}

// Run starts every stage of the chain ending at head and, unless the chain
// runs in the background, waits for the head to exit. Upstream stages are
// left in the job table for Reap.
//
// Stage failures are reported on Stderr and listed in the Status while the
// rest of the pipeline keeps running. A failure to create a pipe or a process
// abandons the remaining stages and is returned; stages already started are
// left to run and get reaped later.
func (l *Launcher) Run(head *shell.Command) (*Status, error) {
	status := &Status{Background: head.Background}

	p, err := l.start(head, l.Stdout, status)
	switch {
	case err != nil:
		l.report(err)
		status.Code = StatusFailed
	case head.Background:
	case p != nil:
		state, err := l.Jobs.Wait(p.Pid)
		if err != nil {
			status.Code = StatusFailed
			l.report(err)
			break
		}
		status.Code = exitCode(state)
	case len(head.Args) == 0:
		// Redirection-only head, nothing to wait for.
	default:
		status.Code = StatusFailed
		if len(status.Failures) > 0 && errors.Is(status.Failures[len(status.Failures)-1], ErrExecFailed) {
			status.Code = StatusNotFound
		}
	}

	return status, err
}

// Reap collects children that have already exited without blocking. The
// shell calls it once per command cycle.
func (l *Launcher) Reap() []Reaped {
	return l.Jobs.Reap()
}

// start launches stage after everything upstream of it, so sources are
// always running before their sinks. stdout is the descriptor the stage
// writes to unless it redirects its output.
//
// It returns a nil process without an error when the stage was skipped.
func (l *Launcher) start(stage *shell.Command, stdout *os.File, status *Status) (*os.Process, error) {
	stdin := l.Stdin

	if stage.Upstream != nil {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, &ProcessError{Kind: ErrPipeFailed, Stage: stageName(stage.Upstream), Err: err}
		}

		_, err = l.start(stage.Upstream, w, status)
		// Only the upstream child keeps the write end open.
		w.Close()
		if err != nil {
			r.Close()
			return nil, err
		}
		defer r.Close()
		stdin = r
	}

	// Redirections come after the pipe so they take precedence.
	if stage.RedirectIn != "" {
		f, err := os.Open(l.resolve(stage.RedirectIn))
		if err != nil {
			l.fail(status, &ProcessError{Kind: ErrOpenRedirect, Stage: stage.RedirectIn, Err: unwrapPath(err)})
			return nil, nil
		}
		defer f.Close()
		stdin = f
	}

	if stage.RedirectOut != "" {
		f, err := os.OpenFile(l.resolve(stage.RedirectOut), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, redirectPerms)
		if err != nil {
			l.fail(status, &ProcessError{Kind: ErrOpenRedirect, Stage: stage.RedirectOut, Err: unwrapPath(err)})
			return nil, nil
		}
		defer f.Close()
		stdout = f
	}

	if len(stage.Args) == 0 {
		return nil, nil
	}

	path, err := exec.LookPath(stage.Args[0])
	if errors.Is(err, exec.ErrDot) {
		// PATH entries are used as given, relative ones included. The result
		// is anchored to the shell's directory, the child may run elsewhere.
		err = nil
		if abs, absErr := filepath.Abs(path); absErr == nil {
			path = abs
		}
	}
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			err = execErr.Err
		}
		l.fail(status, &ProcessError{Kind: ErrExecFailed, Stage: stage.Args[0], Err: err})
		return nil, nil
	}

	p, err := os.StartProcess(path, stage.Args, &os.ProcAttr{
		Dir:   l.Dir,
		Env:   l.env(),
		Files: []*os.File{stdin, stdout, l.Stderr},
	})
	if err != nil {
		startErr := classifyStartError(stage.Args[0], err)
		if errors.Is(startErr, ErrCreateFailed) {
			return nil, startErr
		}
		l.fail(status, startErr)
		return nil, nil
	}

	l.Jobs.Add(p, stage.Args, status.Background)
	status.Launched = append(status.Launched, Launched{PID: p.Pid, Args: stage.Args})
	return p, nil
}

func (l *Launcher) env() []string {
	if l.Env == nil {
		return os.Environ()
	}
	return l.Env
}

// resolve makes redirection targets relative to the child's directory.
func (l *Launcher) resolve(name string) string {
	if l.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.Dir, name)
}

func (l *Launcher) fail(status *Status, err *ProcessError) {
	status.Failures = append(status.Failures, err)
	l.report(err)
}

func (l *Launcher) report(err error) {
	var w io.Writer = os.Stderr
	if l.Stderr != nil {
		w = l.Stderr
	}
	fmt.Fprintf(w, "osh: %v\n", err)
}

func classifyStartError(name string, err error) *ProcessError {
	cause := unwrapPath(err)

	kind := ErrExecFailed
	switch {
	case errors.Is(cause, syscall.EAGAIN), errors.Is(cause, syscall.ENOMEM):
		kind = ErrCreateFailed
	case errors.Is(cause, syscall.EBADF), errors.Is(cause, syscall.EMFILE), errors.Is(cause, syscall.ENFILE):
		kind = ErrDuplicateFailed
	}
	return &ProcessError{Kind: kind, Stage: name, Err: cause}
}

// unwrapPath strips the operation and path from os errors, the stage name
// already carries them.
func unwrapPath(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}

func stageName(stage *shell.Command) string {
	if len(stage.Args) > 0 {
		return stage.Args[0]
	}
	return "pipe"
}
