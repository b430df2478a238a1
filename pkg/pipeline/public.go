package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"

	"github.com/ngld/knossos/packages/uibuild/pkg/buildsys"
	"github.com/ngld/knossos/packages/uibuild/pkg/config"
)

func getProgressBar(env *buildsys.Env, length int, desc string) *progressbar.ProgressBar {
	out := env.Stderr
	if out == nil {
		out = os.Stderr
	}

	if !env.ShowProgress || os.Getenv("CI") == "true" {
		return progressbar.NewOptions(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.NewOptions(length,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
	)
}

func copyPublic(ctx context.Context, env *buildsys.Env, cfg *config.Config) error {
	layout := NewLayout(env.ProjectRoot, cfg)

	info, err := os.Stat(layout.PublicDir)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			buildsys.Log(ctx).Warn().Msgf("%s doesn't exist, nothing to copy", layout.Rel(layout.PublicDir))
			return nil
		}
		return eris.Wrapf(err, "Failed to check %s", layout.PublicDir)
	}

	if !info.IsDir() {
		return eris.Errorf("%s is not a directory!", layout.PublicDir)
	}

	matches, err := buildsys.ResolvePatterns(layout.PublicDir, []string{cfg.Public.Pattern})
	if err != nil {
		return err
	}

	bar := getProgressBar(env, len(matches), "      copy")
	buffer := make([]byte, 32*1024)
	copied := 0

	for _, item := range matches {
		rel, err := filepath.Rel(layout.PublicDir, item)
		if err != nil {
			return eris.Wrapf(err, "Failed to relate %s to %s", item, layout.PublicDir)
		}
		dest := filepath.Join(layout.OutDir, rel)

		info, err := os.Stat(item)
		if err != nil {
			return eris.Wrapf(err, "Failed to check %s", item)
		}

		switch {
		case env.DryRun:
			buildsys.Log(ctx).Debug().Msgf("would copy %s to %s", layout.Rel(item), layout.Rel(dest))
		case info.IsDir():
			err = os.MkdirAll(dest, 0o755)
			if err != nil {
				return eris.Wrapf(err, "Failed to create directory %s", dest)
			}
		case info.Mode().IsRegular():
			err = copyFile(item, dest, info.Mode(), buffer)
			if err != nil {
				return err
			}
			copied++
		default:
			buildsys.Log(ctx).Warn().Msgf("skipping %s since it's neither a file nor a directory", layout.Rel(item))
		}

		_ = bar.Add(1)
	}
	_ = bar.Finish()

	buildsys.Log(ctx).Info().Msgf("copied %d files to %s", copied, layout.Rel(layout.OutDir))
	return nil
}
