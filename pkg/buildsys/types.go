package buildsys

import (
	"context"
	"fmt"
	"io"
)

// ErrorPolicy decides what happens to the rest of a run when a task fails
type ErrorPolicy int

const (
	// Abort stops the run and returns the task's error
	Abort ErrorPolicy = iota
	// LogAndContinue logs the task's error and moves on to the next task
	LogAndContinue
)

func (p ErrorPolicy) String() string {
	switch p {
	case Abort:
		return "abort"
	case LogAndContinue:
		return "log-and-continue"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// Action performs the work of a single task
type Action func(ctx context.Context, env *Env) error

// Task is a named step of the build
type Task struct {
	Short  string
	Desc   string
	Policy ErrorPolicy
	Action Action
}

func (t *Task) String() string {
	return fmt.Sprintf("<Task %s: %s>", t.Short, t.Desc)
}

// TaskList holds the tasks in the order they run when no explicit selection is made
type TaskList []*Task

// Get looks up a task by its short name
func (l TaskList) Get(name string) (*Task, bool) {
	for _, task := range l {
		if task.Short == name {
			return task, true
		}
	}

	return nil, false
}

// Names returns the short names in declaration order
func (l TaskList) Names() []string {
	names := make([]string, len(l))
	for idx, task := range l {
		names[idx] = task.Short
	}

	return names
}

// Env contains the settings shared by every task of a run
type Env struct {
	ProjectRoot string
	// DryRun only logs external commands instead of executing them
	DryRun bool
	// ShowProgress enables progress bars on Stderr
	ShowProgress bool
	Stdout       io.Writer
	Stderr       io.Writer
}
