package buildsys

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	return WithLogger(context.Background(), &logger), buf
}

func recordingTask(name string, policy ErrorPolicy, calls *[]string, result error) *Task {
	return &Task{
		Short:  name,
		Desc:   "records " + name,
		Policy: policy,
		Action: func(ctx context.Context, env *Env) error {
			*calls = append(*calls, name)
			return result
		},
	}
}

func TestRunTasksRunsEverythingInOrder(t *testing.T) {
	ctx, _ := testContext(t)
	calls := []string{}
	tasks := TaskList{
		recordingTask("clean", Abort, &calls, nil),
		recordingTask("css", LogAndContinue, &calls, nil),
		recordingTask("public", Abort, &calls, nil),
		recordingTask("elm", Abort, &calls, nil),
	}

	require.NoError(t, RunTasks(ctx, &Env{}, tasks, nil))
	assert.Equal(t, []string{"clean", "css", "public", "elm"}, calls)
}

func TestRunTasksHonoursExplicitSelection(t *testing.T) {
	ctx, _ := testContext(t)
	calls := []string{}
	tasks := TaskList{
		recordingTask("clean", Abort, &calls, nil),
		recordingTask("css", LogAndContinue, &calls, nil),
		recordingTask("elm", Abort, &calls, nil),
	}

	require.NoError(t, RunTasks(ctx, &Env{}, tasks, []string{"elm", "css"}))
	assert.Equal(t, []string{"elm", "css"}, calls)
}

func TestRunTasksRejectsUnknownNamesBeforeRunning(t *testing.T) {
	ctx, _ := testContext(t)
	calls := []string{}
	tasks := TaskList{recordingTask("clean", Abort, &calls, nil)}

	err := RunTasks(ctx, &Env{}, tasks, []string{"clean", "deploy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy")
	assert.Empty(t, calls)
}

func TestRunTasksContinuesAfterLoggedFailure(t *testing.T) {
	ctx, logs := testContext(t)
	calls := []string{}
	tasks := TaskList{
		recordingTask("css", LogAndContinue, &calls, errors.New("syntax error in ui.sass")),
		recordingTask("public", Abort, &calls, nil),
	}

	require.NoError(t, RunTasks(ctx, &Env{}, tasks, nil))
	assert.Equal(t, []string{"css", "public"}, calls)
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), `"task":"css"`)
}

func TestRunTasksStopsAtFatalFailure(t *testing.T) {
	ctx, _ := testContext(t)
	calls := []string{}
	tasks := TaskList{
		recordingTask("public", Abort, &calls, errors.New("disk full")),
		recordingTask("elm", Abort, &calls, nil),
	}

	err := RunTasks(ctx, &Env{}, tasks, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"public"}, calls)
}

func TestRunTasksStopsWhenCancelled(t *testing.T) {
	ctx, _ := testContext(t)
	ctx, cancel := context.WithCancel(ctx)
	calls := []string{}
	tasks := TaskList{
		{
			Short: "clean",
			Action: func(ctx context.Context, env *Env) error {
				calls = append(calls, "clean")
				cancel()
				return nil
			},
		},
		recordingTask("css", LogAndContinue, &calls, nil),
	}

	err := RunTasks(ctx, &Env{}, tasks, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"clean"}, calls)
}

func TestRunTasksAttachesTaskNameToLogger(t *testing.T) {
	ctx, logs := testContext(t)
	tasks := TaskList{
		{
			Short: "public",
			Action: func(ctx context.Context, env *Env) error {
				Log(ctx).Info().Msg("copying")
				return nil
			},
		},
	}

	require.NoError(t, RunTasks(ctx, &Env{}, tasks, nil))
	assert.Contains(t, logs.String(), `"task":"public","message":"copying"`)
}

func TestErrorPolicyString(t *testing.T) {
	assert.Equal(t, "abort", Abort.String())
	assert.Equal(t, "log-and-continue", LogAndContinue.String())
}
