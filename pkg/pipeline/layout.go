package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ngld/knossos/packages/uibuild/pkg/buildsys"
	"github.com/ngld/knossos/packages/uibuild/pkg/config"
)

// Layout holds the absolute input and output paths of a project
type Layout struct {
	Root       string
	OutDir     string
	CSSDir     string
	JSDir      string
	Stylesheet string
	PublicDir  string
	Manifest   string
	ElmEntry   string
	Bundle     string
}

// NewLayout resolves the configured paths against root
func NewLayout(root string, cfg *config.Config) Layout {
	outDir := buildsys.NormalizePath(root, cfg.Output.Dir)
	jsDir := buildsys.NormalizePath(outDir, cfg.Output.JS)

	return Layout{
		Root:       root,
		OutDir:     outDir,
		CSSDir:     buildsys.NormalizePath(outDir, cfg.Output.CSS),
		JSDir:      jsDir,
		Stylesheet: buildsys.NormalizePath(root, cfg.Stylesheet.Entry),
		PublicDir:  buildsys.NormalizePath(root, cfg.Public.Dir),
		Manifest:   buildsys.NormalizePath(root, cfg.Elm.Manifest),
		ElmEntry:   buildsys.NormalizePath(root, cfg.Elm.Entry),
		Bundle:     filepath.Join(jsDir, cfg.Elm.Bundle),
	}
}

// Rel shortens path for log messages and command arguments
func (l Layout) Rel(path string) string {
	return buildsys.RelPath(l.Root, path)
}

// StylesheetOutput is the path of the compiled stylesheet (the entry's base name with a .css extension)
func (l Layout) StylesheetOutput() string {
	name := filepath.Base(l.Stylesheet)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + ".css"
	return filepath.Join(l.CSSDir, name)
}

// checkOutputDir makes sure we never delete the project itself or anything outside of it
func (l Layout) checkOutputDir() error {
	rel, err := filepath.Rel(l.Root, l.OutDir)
	if err != nil {
		return eris.Wrapf(err, "failed to relate %s to the project root", l.OutDir)
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return eris.Errorf("refusing to use %s as output directory: it must be inside the project root %s", l.OutDir, l.Root)
	}

	return nil
}
