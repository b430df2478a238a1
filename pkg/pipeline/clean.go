package pipeline

import (
	"context"
	"os"

	"github.com/rotisserie/eris"

	"github.com/ngld/knossos/packages/uibuild/pkg/buildsys"
	"github.com/ngld/knossos/packages/uibuild/pkg/config"
)

func clean(ctx context.Context, env *buildsys.Env, cfg *config.Config) error {
	layout := NewLayout(env.ProjectRoot, cfg)
	if err := layout.checkOutputDir(); err != nil {
		return err
	}

	_, err := os.Lstat(layout.OutDir)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			buildsys.Log(ctx).Debug().Msgf("%s doesn't exist, nothing to do", layout.Rel(layout.OutDir))
			return nil
		}
		return eris.Wrapf(err, "Could not stat %s", layout.OutDir)
	}

	buildsys.Log(ctx).Info().Msgf("removing %s", layout.Rel(layout.OutDir))
	if env.DryRun {
		return nil
	}

	err = os.RemoveAll(layout.OutDir)
	if err != nil {
		return eris.Wrapf(err, "Could not delete %s", layout.OutDir)
	}

	return nil
}
