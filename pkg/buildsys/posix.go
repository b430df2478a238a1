package buildsys

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
)

type posixBuiltin func(dir string, args []string) error

var posixBuiltins = map[string]posixBuiltin{
	"mv":    builtinMv,
	"rm":    builtinRm,
	"mkdir": builtinMkdir,
}

// splitFlags separates single-dash short flags from operands. Everything after "--" is an operand.
func splitFlags(args []string) (map[rune]bool, []string) {
	flags := map[rune]bool{}
	operands := make([]string, 0, len(args))
	done := false

	for _, arg := range args {
		if !done && arg == "--" {
			done = true
			continue
		}

		if !done && len(arg) > 1 && arg[0] == '-' {
			for _, r := range arg[1:] {
				flags[r] = true
			}
			continue
		}

		operands = append(operands, arg)
	}

	return flags, operands
}

func resolveOperands(dir string, args []string, allowEmpty bool) ([]string, error) {
	items := make([]string, 0, len(args))
	for _, arg := range args {
		arg = NormalizePath(dir, arg)
		if runtime.GOOS != "windows" {
			items = append(items, arg)
			continue
		}

		// cmd.exe doesn't expand globs for us
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to resolve pattern %s", arg)
		}

		if matches == nil {
			if allowEmpty {
				continue
			}
			return nil, eris.Errorf("Pattern %s produced no matches", arg)
		}

		items = append(items, matches...)
	}

	return items, nil
}

func builtinMv(dir string, args []string) error {
	_, operands := splitFlags(args)
	if len(operands) < 2 {
		return eris.New("Not enough parameters")
	}

	dest := NormalizePath(dir, operands[len(operands)-1])
	destParent := filepath.Dir(dest)
	info, err := os.Stat(destParent)
	if err != nil {
		return eris.Wrapf(err, "Could not find destination directory %s", destParent)
	}

	if !info.IsDir() {
		return eris.Errorf("%s is not a directory!", destParent)
	}

	destIsDir := false
	info, err = os.Stat(dest)
	if err == nil {
		destIsDir = info.IsDir()
	} else if !eris.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "Failed to retrieve info about destination %s", dest)
	}

	items, err := resolveOperands(dir, operands[:len(operands)-1], false)
	if err != nil {
		return err
	}

	if len(items) > 1 && !destIsDir {
		return eris.Errorf("Can't move multiple items to %s because it is not a directory!", dest)
	}

	for _, item := range items {
		itemDest := dest
		if destIsDir {
			itemDest = filepath.Join(dest, filepath.Base(item))
		}

		err = os.Rename(item, itemDest)
		if err != nil {
			return eris.Wrapf(err, "Failed to move %s to %s", item, itemDest)
		}
	}

	return nil
}

func builtinRm(dir string, args []string) error {
	flags, operands := splitFlags(args)
	recursive := flags['r'] || flags['R']
	force := flags['f']

	items, err := resolveOperands(dir, operands, force)
	if err != nil {
		return err
	}

	existing := make([]string, 0, len(items))
	for _, item := range items {
		info, err := os.Lstat(item)
		if err != nil {
			if force && eris.Is(err, os.ErrNotExist) {
				continue
			}
			return eris.Wrapf(err, "Could not stat %s", item)
		}

		if info.IsDir() && !recursive {
			return eris.Errorf("%s is a directory but -r wasn't passed", item)
		}
		existing = append(existing, item)
	}

	for _, item := range existing {
		err := os.RemoveAll(item)
		if err != nil && (!force || !eris.Is(err, os.ErrNotExist)) {
			return eris.Wrapf(err, "Could not delete %s", item)
		}
	}

	return nil
}

func builtinMkdir(dir string, args []string) error {
	flags, operands := splitFlags(args)
	makeParents := flags['p']

	if len(operands) == 0 {
		return eris.New("missing operand")
	}

	for _, item := range operands {
		item = NormalizePath(dir, item)

		var err error
		if makeParents {
			err = os.MkdirAll(item, 0o770)
		} else {
			err = os.Mkdir(item, 0o770)
		}

		if err != nil {
			return eris.Wrapf(err, "Failed to create %s", strings.TrimPrefix(item, dir+string(filepath.Separator)))
		}
	}

	return nil
}
