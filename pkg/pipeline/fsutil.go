package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
)

// writeFileAtomic replaces dest in one step; readers never observe a partially written file
func writeFileAtomic(dest string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dest)
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return eris.Wrapf(err, "Failed to create directory %s", dir)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(dest)+"."+nanoid.New()+".tmp")
	err = os.WriteFile(tmp, data, perm)
	if err != nil {
		os.Remove(tmp)
		return eris.Wrapf(err, "Failed to write %s", tmp)
	}

	err = os.Rename(tmp, dest)
	if err != nil {
		os.Remove(tmp)
		return eris.Wrapf(err, "Failed to move %s to %s", tmp, dest)
	}

	return nil
}

func copyFile(src, dest string, mode os.FileMode, buffer []byte) error {
	destParent := filepath.Dir(dest)
	err := os.MkdirAll(destParent, 0o755)
	if err != nil {
		return eris.Wrapf(err, "Failed to create directory %s", destParent)
	}

	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "Failed to open file %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return eris.Wrapf(err, "Failed to create file %s", dest)
	}

	_, err = io.CopyBuffer(out, in, buffer)
	if err != nil {
		out.Close()
		return eris.Wrapf(err, "Failed to copy %s to %s", src, dest)
	}

	err = out.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", dest)
	}

	return nil
}
