package proc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/josephlewis42/osh/core/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLauncher struct {
	*Launcher
	dir string
}

func newTestLauncher(t *testing.T) *testLauncher {
	t.Helper()

	dir := t.TempDir()
	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	t.Cleanup(func() { devNull.Close() })

	stdout, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	t.Cleanup(func() { stdout.Close() })

	stderr, err := os.Create(filepath.Join(dir, "stderr"))
	require.NoError(t, err)
	t.Cleanup(func() { stderr.Close() })

	l := &Launcher{
		Stdin:  devNull,
		Stdout: stdout,
		Stderr: stderr,
		Dir:    dir,
		Jobs:   NewJobTable(),
	}

	t.Cleanup(func() {
		// Don't leave children behind for the next test.
		assert.Eventually(t, func() bool {
			l.Reap()
			return l.Jobs.Len() == 0
		}, 5*time.Second, 10*time.Millisecond)
	})

	return &testLauncher{Launcher: l, dir: dir}
}

func (tl *testLauncher) run(t *testing.T, line string) *Status {
	t.Helper()

	parsed, err := shell.NewParser(0, 0).Parse(line)
	require.NoError(t, err)

	status, err := tl.Run(parsed.Head)
	require.NoError(t, err)
	return status
}

func (tl *testLauncher) writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(tl.dir, name), []byte(content), 0644))
}

func (tl *testLauncher) readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(tl.dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRunRedirectIn(t *testing.T) {
	tl := newTestLauncher(t)
	tl.writeFile(t, "in.txt", "known\nbytes\n")

	status := tl.run(t, "cat < in.txt > out.txt")

	assert.Equal(t, 0, status.Code)
	assert.Equal(t, "known\nbytes\n", tl.readFile(t, "out.txt"))
}

func TestRunRedirectOutTruncates(t *testing.T) {
	tl := newTestLauncher(t)
	tl.writeFile(t, "out.txt", "previous content that is much longer\n")

	tl.run(t, "echo hi > out.txt")

	assert.Equal(t, "hi\n", tl.readFile(t, "out.txt"))
}

func TestRunStdoutDefault(t *testing.T) {
	tl := newTestLauncher(t)

	tl.run(t, "echo to the terminal")

	assert.Equal(t, "to the terminal\n", tl.readFile(t, "stdout"))
}

func TestRunPipeline(t *testing.T) {
	tl := newTestLauncher(t)
	tl.writeFile(t, "in.txt", "hello\nworld\n")

	status := tl.run(t, "cat < in.txt | tr a-z A-Z | tr O 0 > out.txt")

	assert.Equal(t, 0, status.Code)
	assert.Len(t, status.Launched, 3)
	assert.Equal(t, []string{"cat"}, status.Launched[0].Args)
	assert.Equal(t, []string{"tr", "O", "0"}, status.Launched[2].Args)
	assert.Equal(t, "HELL0\nW0RLD\n", tl.readFile(t, "out.txt"))
}

func TestRunExitStatus(t *testing.T) {
	tl := newTestLauncher(t)

	assert.Equal(t, 0, tl.run(t, "true").Code)
	assert.Equal(t, 1, tl.run(t, "false").Code)
}

func TestRunMissingProgram(t *testing.T) {
	tl := newTestLauncher(t)

	status := tl.run(t, "osh-definitely-not-a-program arg")

	assert.Equal(t, StatusNotFound, status.Code)
	require.Len(t, status.Failures, 1)
	assert.ErrorIs(t, status.Failures[0], ErrExecFailed)
	assert.Empty(t, status.Launched)
	assert.Contains(t, tl.readFile(t, "stderr"), "osh: osh-definitely-not-a-program: ")
}

func TestRunMissingRedirect(t *testing.T) {
	tl := newTestLauncher(t)

	status := tl.run(t, "cat < missing.txt")

	assert.Equal(t, StatusFailed, status.Code)
	require.Len(t, status.Failures, 1)
	assert.ErrorIs(t, status.Failures[0], ErrOpenRedirect)
	assert.ErrorIs(t, status.Failures[0], os.ErrNotExist)
	assert.Equal(t, "osh: missing.txt: no such file or directory\n", tl.readFile(t, "stderr"))
}

func TestRunFailedUpstreamClosesPipe(t *testing.T) {
	tl := newTestLauncher(t)

	// The sink must see EOF instead of hanging on a pipe nobody writes to.
	status := tl.run(t, "osh-definitely-not-a-program | cat > out.txt")

	assert.Equal(t, 0, status.Code)
	require.Len(t, status.Failures, 1)
	assert.Len(t, status.Launched, 1)
	assert.Equal(t, "", tl.readFile(t, "out.txt"))
}

func TestRunRelativePathEntry(t *testing.T) {
	tl := newTestLauncher(t)
	require.NoError(t, os.WriteFile(filepath.Join(tl.dir, "hello"), []byte("#!/bin/sh\necho hello from dot\n"), 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tl.dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("PATH", "."+string(os.PathListSeparator)+os.Getenv("PATH"))

	status := tl.run(t, "hello > out.txt")

	assert.Equal(t, 0, status.Code)
	assert.Empty(t, status.Failures)
	require.Len(t, status.Launched, 1)
	assert.Equal(t, "hello from dot\n", tl.readFile(t, "out.txt"))
}

func TestRunRedirectOnly(t *testing.T) {
	tl := newTestLauncher(t)
	tl.writeFile(t, "out.txt", "stale")

	status := tl.run(t, "> out.txt")

	assert.Equal(t, 0, status.Code)
	assert.Empty(t, status.Launched)
	assert.Equal(t, "", tl.readFile(t, "out.txt"))
}

func TestRunBackgroundIsReaped(t *testing.T) {
	tl := newTestLauncher(t)

	status := tl.run(t, "true &")

	assert.True(t, status.Background)
	assert.Equal(t, 0, status.Code)
	require.Len(t, status.Launched, 1)
	pid := status.Launched[0].PID

	var reaped []Reaped
	assert.Eventually(t, func() bool {
		reaped = append(reaped, tl.Reap()...)
		return tl.Jobs.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, reaped, 1)
	assert.Equal(t, pid, reaped[0].PID)
	assert.Equal(t, 0, reaped[0].Status)
	assert.NoError(t, reaped[0].Err)
}

func TestReapDoesNotBlock(t *testing.T) {
	tl := newTestLauncher(t)

	tl.run(t, "sleep 1 &")

	start := time.Now()
	assert.Empty(t, tl.Reap())
	assert.Less(t, int64(time.Since(start)), int64(500*time.Millisecond))
	assert.Equal(t, 1, tl.Jobs.Len())
}
