package buildsys

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

func selectTasks(tasks TaskList, names []string) (TaskList, error) {
	if len(names) == 0 {
		return tasks, nil
	}

	selected := make(TaskList, 0, len(names))
	for _, name := range names {
		task, found := tasks.Get(name)
		if !found {
			return nil, eris.Errorf("Task %s not found", name)
		}

		selected = append(selected, task)
	}

	return selected, nil
}

// RunTasks executes the named tasks in the given order or the whole list if names is empty.
// Unknown names are reported before anything runs. A task only starts once its predecessor returned.
func RunTasks(ctx context.Context, env *Env, tasks TaskList, names []string) error {
	selected, err := selectTasks(tasks, names)
	if err != nil {
		return err
	}

	for _, task := range selected {
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "interrupted before task %s", task.Short)
		}

		err := runTask(ctx, env, task)
		if err == nil {
			continue
		}

		if task.Policy == LogAndContinue {
			log(ctx).Error().
				Str("task", task.Short).
				Err(err).
				Msg("failed, continuing with the remaining tasks")
			continue
		}

		return eris.Wrapf(err, "Task %s failed", task.Short)
	}

	return nil
}

func runTask(ctx context.Context, env *Env, task *Task) error {
	if task.Action == nil {
		return eris.Errorf("task %s has no action", task.Short)
	}

	logger := log(ctx).With().Str("task", task.Short).Logger()
	ctx = WithLogger(ctx, &logger)

	logger.Debug().Msg("starting")
	t0 := time.Now()
	err := task.Action(ctx, env)
	if err != nil {
		return err
	}

	logger.Info().Msgf("done in %s", time.Since(t0).Round(time.Millisecond))
	return nil
}
