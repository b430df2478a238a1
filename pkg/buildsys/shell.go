package buildsys

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// stderrTailSize limits how much of a failed command's stderr is kept in its ExitError
const stderrTailSize = 4096

// Command describes a single invocation of an external tool
type Command struct {
	// Line contains the program and any leading arguments in shell syntax (i.e. "npx sass --no-source-map").
	// mv, rm and mkdir are always served by built-in implementations, so lines such as
	// "mkdir -p build && sass" behave the same on every platform.
	Line string
	// Args are quoted and appended to the last statement of Line
	Args []string
	// Dir defaults to the project root
	Dir string
	// Stdout and Stderr default to the Env's writers
	Stdout io.Writer
	Stderr io.Writer
}

// Script renders the command as the shell script that will be executed
func (c Command) Script() string {
	if len(c.Args) == 0 {
		return c.Line
	}

	quoted := make([]string, len(c.Args))
	for idx, arg := range c.Args {
		quoted[idx] = shellQuote(arg)
	}

	return c.Line + " " + strings.Join(quoted, " ")
}

// ToShellStmts parses the rendered script
func (c Command) ToShellStmts(parser *syntax.Parser) ([]*syntax.Stmt, error) {
	script := c.Script()
	result, err := parser.Parse(strings.NewReader(script), "command")
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse command %s", script)
	}

	if len(result.Stmts) == 0 {
		return nil, eris.Errorf("command %q is empty", c.Line)
	}

	return result.Stmts, nil
}

// ExitError is returned when an external command exits with a non-zero status
type ExitError struct {
	Command string
	Status  uint8
	// Stderr holds the last few KiB the command wrote to stderr
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Status)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ":\n" + stderr
	}

	return msg
}

type tailBuffer struct {
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}

	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}

var defaultExecHandler = interp.DefaultExecHandler(2 * time.Second)

func execHandler(ctx context.Context, args []string) error {
	if len(args) > 0 {
		// always use our cross-platform implementation for these operations to make sure
		// they behave consistently
		if builtin, ok := posixBuiltins[args[0]]; ok {
			hc := interp.HandlerCtx(ctx)
			err := builtin(hc.Dir, args[1:])
			if err != nil {
				fmt.Fprintf(hc.Stderr, "%s: %s\n", args[0], err)
				return interp.NewExitStatus(1)
			}

			return nil
		}
	}

	return defaultExecHandler(ctx, args)
}

var defaultOpenHandler = interp.DefaultOpenHandler()

func openHandler(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path == "/dev/null" {
		path = os.DevNull
	}

	return defaultOpenHandler(ctx, path, flag, perm)
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	if fallback != nil {
		return fallback
	}

	return io.Discard
}

// RunCommand executes cmd through the embedded shell interpreter with "set -e" semantics.
// In dry-run mode the command is only logged.
func RunCommand(ctx context.Context, env *Env, cmd Command) error {
	parser := syntax.NewParser()
	stmts, err := cmd.ToShellStmts(parser)
	if err != nil {
		return err
	}

	printer := syntax.NewPrinter(syntax.Minify(true))
	strBuffer := strings.Builder{}
	for idx, stm := range stmts {
		if idx > 0 {
			strBuffer.WriteString("; ")
		}
		err = printer.Print(&strBuffer, stm)
		if err != nil {
			return eris.Wrap(err, "failed to print command")
		}
	}
	rendered := strings.TrimSpace(strBuffer.String())

	log(ctx).Info().
		Bool("command", true).
		Msg(rendered)

	if env.DryRun {
		return nil
	}

	dir := cmd.Dir
	if dir == "" {
		dir = env.ProjectRoot
	}

	tail := &tailBuffer{limit: stderrTailSize}
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.ExecHandler(execHandler),
		interp.OpenHandler(openHandler),
		interp.StdIO(nil, writerOr(cmd.Stdout, env.Stdout), io.MultiWriter(writerOr(cmd.Stderr, env.Stderr), tail)),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "Failed to initialize runner")
	}

	for _, stm := range stmts {
		err = runner.Run(ctx, stm)
		if err != nil {
			if status, ok := interp.IsExitStatus(err); ok {
				return &ExitError{
					Command: rendered,
					Status:  status,
					Stderr:  tail.String(),
				}
			}

			return eris.Wrapf(err, "failed to run %s", rendered)
		}

		if runner.Exited() {
			break
		}
	}

	return ctx.Err()
}
