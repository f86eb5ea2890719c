// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProcess records the last invocation and returns a configured error.
type mockProcess struct {
	name   string
	args   []string
	dir    string
	stdout string
	stderr string
	err    error
}

func (m *mockProcess) Run(ctx context.Context, name string, args []string, dir string, stdout, stderr *bytes.Buffer) error {
	m.name = name
	m.args = args
	m.dir = dir
	stdout.WriteString(m.stdout)
	stderr.WriteString(m.stderr)
	return m.err
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, 0)
	assert.Equal(t, DefaultShell, r.shell)
	assert.Zero(t, r.timeout)
}

func TestExecuteBuildsShellInvocation(t *testing.T) {
	proc := &mockProcess{stdout: "out", stderr: "err"}
	r := NewRunner([]string{"bash", "-e", "-c"}, 0)
	r.proc = proc

	res, err := r.Execute(context.Background(), "lessc a.less a.css", "/assets")
	require.NoError(t, err)

	assert.Equal(t, "bash", proc.name)
	assert.Equal(t, []string{"-e", "-c", "lessc a.less a.css"}, proc.args)
	assert.Equal(t, "/assets", proc.dir)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Success())
	assert.Equal(t, "out", res.Stdout)
	assert.Equal(t, "err", res.Stderr)
}

func TestExecuteSpawnFailure(t *testing.T) {
	proc := &mockProcess{err: errors.New("exec: \"sh\": executable file not found in $PATH")}
	r := NewRunner(nil, 0)
	r.proc = proc

	res, err := r.Execute(context.Background(), "true", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting sh")
	assert.Equal(t, -1, res.ExitCode)
	assert.False(t, res.Success())
}

func TestExecuteRealShell(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name       string
		command    string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "success captures stdout",
			command:    "echo hello",
			wantStdout: "hello\n",
		},
		{
			name:       "non-zero exit is not an error",
			command:    "echo boom >&2; exit 3",
			wantCode:   3,
			wantStderr: "boom\n",
		},
		{
			name:     "unknown command exits 127",
			command:  "definitely-not-a-real-compiler-xyz",
			wantCode: 127,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(nil, 0)
			res, err := r.Execute(context.Background(), tt.command, t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, res.ExitCode)
			if tt.wantStdout != "" {
				assert.Equal(t, tt.wantStdout, res.Stdout)
			}
			if tt.wantStderr != "" {
				assert.Equal(t, tt.wantStderr, res.Stderr)
			}
		})
	}
}

func TestExecuteUsesWorkingDirectory(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	r := NewRunner(nil, 0)
	res, err := r.Execute(context.Background(), "pwd", dir)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(res.Stdout))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecuteMissingDirectory(t *testing.T) {
	requireShell(t)

	r := NewRunner(nil, 0)
	_, err := r.Execute(context.Background(), "true", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestExecuteTimeout(t *testing.T) {
	requireShell(t)

	r := NewRunner(nil, 50*time.Millisecond)
	res, err := r.Execute(context.Background(), "sleep 5", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, -1, res.ExitCode)
}
