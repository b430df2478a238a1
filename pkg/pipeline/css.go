package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rotisserie/eris"

	"github.com/ngld/knossos/packages/uibuild/pkg/buildsys"
	"github.com/ngld/knossos/packages/uibuild/pkg/config"
)

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}

	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}

// postProcess adds the vendor prefixes required by engines and minifies the stylesheet
func postProcess(css, sourcefile string, engines []api.Engine) ([]byte, []string, error) {
	result := api.Transform(css, api.TransformOptions{
		Loader:           api.LoaderCSS,
		Engines:          engines,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		Sourcefile:       sourcefile,
		LogLevel:         api.LogLevelSilent,
	})

	warnings := make([]string, len(result.Warnings))
	for idx, msg := range result.Warnings {
		warnings[idx] = formatMessage(msg)
	}

	if len(result.Errors) > 0 {
		errors := make([]string, len(result.Errors))
		for idx, msg := range result.Errors {
			errors[idx] = formatMessage(msg)
		}

		return nil, warnings, eris.Errorf("failed to post-process %s:\n%s", sourcefile, strings.Join(errors, "\n"))
	}

	return result.Code, warnings, nil
}

func compileStylesheet(ctx context.Context, env *buildsys.Env, cfg *config.Config) error {
	layout := NewLayout(env.ProjectRoot, cfg)
	entry := layout.Rel(layout.Stylesheet)

	engines, err := cfg.Engines()
	if err != nil {
		return err
	}

	_, err = os.Stat(layout.Stylesheet)
	if err != nil {
		return eris.Wrapf(err, "Failed to check stylesheet entry %s", entry)
	}

	compiled := &bytes.Buffer{}
	err = buildsys.RunCommand(ctx, env, buildsys.Command{
		Line:   cfg.Stylesheet.Compiler,
		Args:   []string{entry},
		Stdout: compiled,
	})
	if err != nil {
		return eris.Wrapf(err, "failed to compile %s", entry)
	}

	if env.DryRun {
		return nil
	}

	code, warnings, err := postProcess(compiled.String(), entry, engines)
	for _, warning := range warnings {
		buildsys.Log(ctx).Warn().Msg(warning)
	}
	if err != nil {
		return err
	}

	dest := layout.StylesheetOutput()
	err = writeFileAtomic(dest, code, 0o644)
	if err != nil {
		return err
	}

	buildsys.Log(ctx).Info().Msgf("wrote %s (%d bytes)", layout.Rel(dest), len(code))
	return nil
}
