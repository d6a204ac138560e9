package proc

import (
	"errors"
	"os"
	"sort"
	"syscall"

	"golang.org/x/sys/unix"
)

// Job is a started process that has not been waited for yet.
type Job struct {
	Process    *os.Process
	Args       []string
	Background bool
}

// Reaped is the outcome of collecting a finished job.
type Reaped struct {
	PID    int
	Args   []string
	Status int
	// Err is set when the process could not be waited for at all.
	Err error
}

// JobTable tracks every child the shell started until it is waited for.
// It is not safe for concurrent use; the shell drives it from one goroutine.
type JobTable struct {
	jobs map[int]*Job
}

func NewJobTable() *JobTable {
	return &JobTable{jobs: make(map[int]*Job)}
}

// Add starts tracking a process.
func (t *JobTable) Add(p *os.Process, args []string, background bool) {
	t.jobs[p.Pid] = &Job{Process: p, Args: args, Background: background}
}

// Len returns the number of unreaped jobs.
func (t *JobTable) Len() int {
	return len(t.jobs)
}

// Wait blocks until the given job exits and stops tracking it.
func (t *JobTable) Wait(pid int) (*os.ProcessState, error) {
	job, ok := t.jobs[pid]
	if !ok {
		return nil, syscall.ECHILD
	}
	delete(t.jobs, pid)

	return job.Process.Wait()
}

// Reap collects every job that has already exited, without blocking.
// Results are ordered by PID.
func (t *JobTable) Reap() []Reaped {
	pids := make([]int, 0, len(t.jobs))
	for pid := range t.jobs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	var out []Reaped
	for _, pid := range pids {
		job := t.jobs[pid]

		var ws unix.WaitStatus
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue // try again next cycle
		case err != nil:
			out = append(out, Reaped{PID: pid, Args: job.Args, Status: -1, Err: err})
		case wpid == 0:
			continue // still running
		default:
			out = append(out, Reaped{PID: pid, Args: job.Args, Status: waitStatusCode(ws)})
		}

		delete(t.jobs, pid)
		job.Process.Release()
	}
	return out
}

func waitStatusCode(ws unix.WaitStatus) int {
	if ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ws.ExitStatus()
}

// exitCode converts a process state into a shell exit status.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
