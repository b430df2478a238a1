package buildsys

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX tools")
	}
}

func TestCommandScriptQuotesArguments(t *testing.T) {
	cmd := Command{
		Line: "elm make",
		Args: []string{"src/Main.elm", "--output", "dist/js/my app.js", "it's"},
	}

	assert.Equal(t, `elm make src/Main.elm --output 'dist/js/my app.js' 'it'\''s'`, cmd.Script())
}

func TestRunCommandCapturesOutput(t *testing.T) {
	skipOnWindows(t)
	ctx, logs := testContext(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in.txt"), []byte("hello"), 0o644))

	stdout := &bytes.Buffer{}
	env := &Env{ProjectRoot: dir}
	err := RunCommand(ctx, env, Command{Line: "cat", Args: []string{"in.txt"}, Stdout: stdout})

	require.NoError(t, err)
	assert.Equal(t, "hello", stdout.String())
	assert.Contains(t, logs.String(), `"command":true`)
}

func TestRunCommandReportsExitStatus(t *testing.T) {
	ctx, _ := testContext(t)
	stderr := &bytes.Buffer{}
	env := &Env{ProjectRoot: t.TempDir(), Stderr: stderr}

	err := RunCommand(ctx, env, Command{Line: "echo broken >&2; exit 3"})
	require.Error(t, err)

	exitErr, ok := err.(*ExitError)
	require.True(t, ok, "expected *ExitError, got %T", err)
	assert.Equal(t, uint8(3), exitErr.Status)
	assert.Contains(t, exitErr.Stderr, "broken")
	assert.Contains(t, exitErr.Error(), "status 3")
	assert.Contains(t, stderr.String(), "broken")
}

func TestRunCommandDryRunDoesNothing(t *testing.T) {
	ctx, logs := testContext(t)
	dir := t.TempDir()
	env := &Env{ProjectRoot: dir, DryRun: true}

	require.NoError(t, RunCommand(ctx, env, Command{Line: "mkdir created"}))
	assert.NoDirExists(t, filepath.Join(dir, "created"))
	assert.Contains(t, logs.String(), "mkdir created")
}

func TestRunCommandUsesBuiltins(t *testing.T) {
	ctx, _ := testContext(t)
	dir := t.TempDir()
	env := &Env{ProjectRoot: dir}

	require.NoError(t, RunCommand(ctx, env, Command{Line: "mkdir -p a/b && mv a/b c && rm -r a"}))
	assert.DirExists(t, filepath.Join(dir, "c"))
	assert.NoDirExists(t, filepath.Join(dir, "a"))
}

func TestRunCommandRejectsEmptyScript(t *testing.T) {
	ctx, _ := testContext(t)
	err := RunCommand(ctx, &Env{ProjectRoot: t.TempDir()}, Command{Line: "   "})
	require.Error(t, err)
}

func TestTailBufferKeepsEnd(t *testing.T) {
	buf := &tailBuffer{limit: 4}
	_, _ = buf.Write([]byte("abc"))
	_, _ = buf.Write([]byte("defg"))
	assert.Equal(t, "defg", buf.String())
}
