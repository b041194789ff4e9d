package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the mode of generated pages and files written by init.
const DefaultFileMode os.FileMode = 0644

// DefaultDirMode is the mode of output directories created on write.
const DefaultDirMode os.FileMode = 0755

// WriteAtomic replaces path with content. The bytes are staged in a hidden
// file beside path and renamed over it, so a page being regenerated is
// either the old or the new version, never a prefix of one. Missing parent
// directories are created. A zero mode means DefaultFileMode.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirMode); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	staged, err := stage(path, content, mode)
	if err != nil {
		return err
	}

	if err := os.Rename(staged, path); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteAtomicIfChanged writes a generated page unless path already holds
// exactly content, leaving the file and its modification time alone for
// incremental rebuilds. It reports whether the file was written.
func WriteAtomicIfChanged(ctx context.Context, path string, content []byte, mode os.FileMode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	same, err := holds(path, content)
	if err != nil || same {
		return false, err
	}

	if err := WriteAtomic(ctx, path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}

// stage writes content to a new dot-file next to path and returns its
// name. Discovery and the watcher skip dot-files, so a staged page is
// never picked up as a source or a change.
func stage(path string, content []byte, mode os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	name := tmp.Name()

	_, err = tmp.Write(content)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(name, mode)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("stage %s: %w", path, err)
	}

	return name, nil
}

// holds reports whether path is a regular file whose bytes equal content.
// Sizes are compared before reading. A missing file holds nothing.
func holds(path string, content []byte) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", path, err)
	case !info.Mode().IsRegular(), info.Size() != int64(len(content)):
		return false, nil
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read existing %s: %w", path, err)
	}
	return bytes.Equal(existing, content), nil
}
