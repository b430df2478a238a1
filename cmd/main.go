// Package cmd implements the uibuild CLI
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ngld/knossos/packages/uibuild/pkg"
	"github.com/ngld/knossos/packages/uibuild/pkg/buildsys"
	"github.com/ngld/knossos/packages/uibuild/pkg/config"
	"github.com/ngld/knossos/packages/uibuild/pkg/pipeline"
)

type options struct {
	root       string
	dryRun     bool
	noProgress bool
	logLevel   string
	logJSON    bool
}

// loggedError marks errors that were already reported through the logger
type loggedError struct {
	error
}

func (e loggedError) Unwrap() error {
	return e.error
}

func resolveRoot(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return pkg.FindProjectRoot(wd)
}

func newLogger(out io.Writer, cfg *config.Config) zerolog.Logger {
	if cfg.Log.JSON {
		return zerolog.New(out).Level(cfg.LogLevel()).With().Timestamp().Logger()
	}

	return zerolog.New(NewConsoleWriter(out)).Level(cfg.LogLevel())
}

func loadConfig(cmd *cobra.Command, opts *options, root string) (*config.Config, error) {
	cfg, err := config.Read(root)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = opts.logJSON
	}

	return cfg, cfg.Validate()
}

func runSteps(cmd *cobra.Command, opts *options, names []string) error {
	root, err := resolveRoot(opts.root)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts, root)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = buildsys.WithLogger(ctx, &logger)

	env := &buildsys.Env{
		ProjectRoot:  root,
		DryRun:       opts.dryRun,
		ShowProgress: !opts.noProgress,
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	}

	logger.Debug().Str("root", root).Msg("starting build")
	err = buildsys.RunTasks(ctx, env, pipeline.Tasks(cfg), names)
	if err != nil {
		logger.Error().Err(err).Msg("Build failed")
		return loggedError{err}
	}

	return nil
}

func stepCommand(opts *options, task *buildsys.Task) *cobra.Command {
	return &cobra.Command{
		Use:   task.Short,
		Short: task.Desc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, opts, []string{task.Short})
		},
	}
}

// NewRootCmd builds the uibuild command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "uibuild",
		Short: "Builds the web UI",
		Long: `Without arguments, uibuild runs the whole build: clean, css, public and elm.
Pass a step name to run only that step. Settings are read from uibuild.toml in the
project root and from UIBUILD_* environment variables.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, opts, nil)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", "", "project root (default: nearest directory containing uibuild.toml)")
	flags.BoolVarP(&opts.dryRun, "dry", "n", false, "dry run; only print the commands, don't execute anything")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "don't show progress bars")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "output JSON lines instead of pretty console messages")

	for _, task := range pipeline.Tasks(config.Default()) {
		rootCmd.AddCommand(stepCommand(opts, task))
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run step...",
		Short: "Runs the given steps in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, opts, args)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "tasks",
		Short: "Lists the available steps in the order of a full build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := pipeline.Tasks(config.Default())
			maxNameLen := 0
			for _, task := range tasks {
				if len(task.Short) > maxNameLen {
					maxNameLen = len(task.Short)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Available tasks:")
			lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+3)
			for _, task := range tasks {
				fmt.Fprintf(out, lineFmt, task.Short+":", task.Desc)
			}

			return nil
		},
	})

	return rootCmd
}

// Execute runs the CLI and exits with status 1 if the build failed
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var logged loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}
