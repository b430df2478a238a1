package buildsys

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func isSafeShellWord(value string) bool {
	if value == "" {
		return false
	}

	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./:=@%+,", r):
		default:
			return false
		}
	}
	return true
}

func shellQuote(value string) string {
	if isSafeShellWord(value) {
		return value
	}

	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// NormalizePath resolves path against base unless it's already absolute
func NormalizePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(base, path)
}

// RelPath returns path relative to base in slash form or the cleaned path if that's not possible.
// Absolute paths cause issues on Windows when they're passed through the shell.
func RelPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}

	return filepath.ToSlash(rel)
}

func shellReadDir(path string) ([]os.FileInfo, error) {
	if path == "" {
		path = "."
	}

	return ioutil.ReadDir(path)
}

// ResolvePatterns expands shell glob patterns (with globstar enabled) relative to base.
// The result is ordered the way the shell would order it; patterns without any matches expand to nothing.
func ResolvePatterns(base string, patterns []string) ([]string, error) {
	result := []string{}
	cfg := expand.Config{
		ReadDir:  shellReadDir,
		GlobStar: true,
		NullGlob: true,
	}

	parser := syntax.NewParser()
	quotedBase := shellQuote(filepath.ToSlash(base))

	for _, item := range patterns {
		item = filepath.ToSlash(item)
		if !filepath.IsAbs(item) {
			item = quotedBase + "/" + item
		}

		words := make([]*syntax.Word, 0)
		err := parser.Words(strings.NewReader(item), func(w *syntax.Word) bool {
			words = append(words, w)
			return true
		})
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to parse pattern %s", item)
		}

		matches, err := expand.Fields(&cfg, words...)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to resolve pattern %s", item)
		}

		for _, match := range matches {
			result = append(result, filepath.FromSlash(match))
		}
	}
	return result, nil
}
