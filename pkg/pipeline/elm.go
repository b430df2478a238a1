package pipeline

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ngld/knossos/packages/uibuild/pkg/buildsys"
	"github.com/ngld/knossos/packages/uibuild/pkg/config"
)

// elmManifest covers the fields we log from both elm-package.json (0.18) and elm.json (0.19).
// JSON is a subset of YAML so the YAML decoder reads either.
type elmManifest struct {
	Type              string   `yaml:"type"`
	Version           string   `yaml:"version"`
	ElmVersion        string   `yaml:"elm-version"`
	SourceDirectories []string `yaml:"source-directories"`
}

func readManifest(path string) (*elmManifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open manifest %s", path)
	}

	var manifest elmManifest
	err = yaml.Unmarshal(content, &manifest)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse manifest %s", path)
	}

	return &manifest, nil
}

func compileElm(ctx context.Context, env *buildsys.Env, cfg *config.Config) error {
	layout := NewLayout(env.ProjectRoot, cfg)

	manifest, err := readManifest(layout.Manifest)
	if err != nil {
		return err
	}

	buildsys.Log(ctx).Debug().
		Str("elm-version", manifest.ElmVersion).
		Strs("sources", manifest.SourceDirectories).
		Msgf("loaded %s", layout.Rel(layout.Manifest))

	if !env.DryRun {
		err = os.MkdirAll(layout.JSDir, 0o755)
		if err != nil {
			return eris.Wrapf(err, "Failed to create directory %s", layout.JSDir)
		}
	}

	err = buildsys.RunCommand(ctx, env, buildsys.Command{
		Line: cfg.Elm.Compiler,
		Args: []string{layout.Rel(layout.ElmEntry), "--output", layout.Rel(layout.Bundle)},
	})
	if err != nil {
		return eris.Wrapf(err, "failed to compile %s", layout.Rel(layout.ElmEntry))
	}

	if !env.DryRun {
		buildsys.Log(ctx).Info().Msgf("wrote %s", layout.Rel(layout.Bundle))
	}
	return nil
}
