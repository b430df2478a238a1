package pkg

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/ngld/knossos/packages/uibuild/pkg/config"
)

// FindProjectRoot walks up from start until it finds a directory containing uibuild.toml.
// If there's none, start itself is the project root.
func FindProjectRoot(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", eris.Wrap(err, "Failed to resolve start directory")
	}

	path := start
	for {
		cfgPath := filepath.Join(path, config.FileName)
		_, err := os.Stat(cfgPath)
		if err == nil {
			return path, nil
		}

		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "Failed to check %s", cfgPath)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return start, nil
		}
		path = parent
	}
}
