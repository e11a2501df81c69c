// Package fileutil provides file system utilities for fmstage output:
// atomic writes and metadata encoding.
package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/thoreinstein/fmstage/internal/errors"
)

// DefaultFilePerm is used for written files when no mode is known.
const DefaultFilePerm os.FileMode = 0o644

// DefaultDirPerm is used for parent directories created on write.
const DefaultDirPerm os.FileMode = 0o755

// tempPattern names in-progress files. The leading dot keeps them out of
// FileSource walks if an output tree is read back in.
const tempPattern = ".fmstage-*.tmp"

// AtomicWriteFile writes data to path so that readers see either the old
// file or the complete new one, never a partial write. Missing parent
// directories are created. perm is applied to the final file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return atomicWrite(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicWriteEncoded encodes v in format and writes it to path atomically.
// Nothing is written when encoding fails.
func AtomicWriteEncoded(path string, format Format, v any, perm os.FileMode) error {
	data, err := Encode(format, v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data, perm)
}

// AtomicCopy streams r into path atomically.
func AtomicCopy(path string, r io.Reader, perm os.FileMode) error {
	return atomicWrite(path, perm, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

func atomicWrite(path string, perm os.FileMode, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}

	// Same directory as path so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := fill(tmp); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}
