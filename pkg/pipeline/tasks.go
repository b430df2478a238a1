package pipeline

import (
	"context"

	"github.com/ngld/knossos/packages/uibuild/pkg/buildsys"
	"github.com/ngld/knossos/packages/uibuild/pkg/config"
)

// Step names, in the order of the default sequence
const (
	StepClean  = "clean"
	StepCSS    = "css"
	StepPublic = "public"
	StepElm    = "elm"
)

type stepFunc func(ctx context.Context, env *buildsys.Env, cfg *config.Config) error

func bind(cfg *config.Config, fn stepFunc) buildsys.Action {
	return func(ctx context.Context, env *buildsys.Env) error {
		return fn(ctx, env, cfg)
	}
}

// Tasks returns the build steps in the order they run by default.
// Stylesheet errors are only logged so a typo doesn't block the remaining steps.
func Tasks(cfg *config.Config) buildsys.TaskList {
	return buildsys.TaskList{
		{
			Short:  StepClean,
			Desc:   "Remove the output directory",
			Policy: buildsys.Abort,
			Action: bind(cfg, clean),
		},
		{
			Short:  StepCSS,
			Desc:   "Compile the stylesheet, add vendor prefixes and minify it",
			Policy: buildsys.LogAndContinue,
			Action: bind(cfg, compileStylesheet),
		},
		{
			Short:  StepPublic,
			Desc:   "Copy the static assets into the output directory",
			Policy: buildsys.Abort,
			Action: bind(cfg, copyPublic),
		},
		{
			Short:  StepElm,
			Desc:   "Compile the Elm application into a single bundle",
			Policy: buildsys.Abort,
			Action: bind(cfg, compileElm),
		},
	}
}
