package buildsys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolvePatternsGlobStar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "public", "index.html"), "<html>")
	writeFile(t, filepath.Join(dir, "public", "img", "logo.png"), "png")
	writeFile(t, filepath.Join(dir, "public", "img", "icons", "a.svg"), "svg")

	matches, err := ResolvePatterns(dir, []string{"public/**/*"})
	require.NoError(t, err)

	rel := make([]string, len(matches))
	for idx, match := range matches {
		rel[idx] = RelPath(dir, match)
	}

	assert.ElementsMatch(t, []string{
		"public/img",
		"public/img/icons",
		"public/img/icons/a.svg",
		"public/img/logo.png",
		"public/index.html",
	}, rel)
}

func TestResolvePatternsDropsUnmatched(t *testing.T) {
	matches, err := ResolvePatterns(t.TempDir(), []string{"missing/**/*"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestResolvePatternsKeepsLiteralStars(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a*")
	writeFile(t, filepath.Join(dir, "public", "x*y.txt"), "star")

	matches, err := ResolvePatterns(filepath.Join(dir, "public"), []string{"*"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "public", "x*y.txt")}, matches)
}

func TestNormalizeAndRelPath(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "project")

	assert.Equal(t, filepath.Join(base, "src", "ui.sass"), NormalizePath(base, "src/ui.sass"))
	assert.Equal(t, filepath.Join(string(filepath.Separator), "abs"), NormalizePath(base, filepath.Join(string(filepath.Separator), "abs")))
	assert.Equal(t, "dist/js/elm.js", RelPath(base, filepath.Join(base, "dist", "js", "elm.js")))
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "src/ui.sass", shellQuote("src/ui.sass"))
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, "'a b'", shellQuote("a b"))
	assert.Equal(t, "'$HOME'", shellQuote("$HOME"))
}
