package fsutil

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CopyStats summarizes a CopyTree run.
type CopyStats struct {
	Files int
	Dirs  int
	Bytes int64
}

// CopyFunc is called after each file is copied.
type CopyFunc func(src, dst string, size int64)

// CopyTree recursively copies the contents of src into dst, creating dst
// and any intermediate directories. File modes are preserved. Symlinks are
// skipped. When dst lies inside src its subtree is not copied into itself.
// onCopy may be nil.
func CopyTree(ctx context.Context, src, dst string, onCopy CopyFunc) (CopyStats, error) {
	var stats CopyStats

	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return stats, fmt.Errorf("resolve source: %w", err)
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return stats, fmt.Errorf("resolve destination: %w", err)
	}

	info, err := os.Stat(srcAbs)
	if err != nil {
		return stats, classifyError(srcAbs, err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("%w: %s", ErrNotDirectory, srcAbs)
	}

	err = filepath.WalkDir(srcAbs, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(srcAbs, path)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}
		target := filepath.Join(dstAbs, rel)

		switch {
		case entry.IsDir():
			if path == dstAbs && path != srcAbs {
				return filepath.SkipDir
			}
			if err := os.MkdirAll(target, DefaultDirMode); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			if path != srcAbs {
				stats.Dirs++
			}
			return nil
		case entry.Type()&fs.ModeSymlink != 0:
			return nil
		case !entry.Type().IsRegular():
			return nil
		}

		size, err := copyFile(path, target)
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += size
		if onCopy != nil {
			onCopy(path, target, size)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("copy %s to %s: %w", srcAbs, dstAbs, err)
	}

	return stats, nil
}

// copyFile copies one regular file, preserving its mode.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, classifyError(src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}

	size, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", dst, err)
	}

	return size, nil
}

// CleanDir removes dir and everything below it. A missing dir is not an
// error. The filesystem root, the working directory and its ancestors are
// never removed.
func CleanDir(ctx context.Context, dir string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("clean directory: %w", ctx.Err())
	default:
	}

	if dir == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafeRemove)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}

	if abs == filepath.Dir(abs) {
		return fmt.Errorf("%w: %s is the filesystem root", ErrUnsafeRemove, abs)
	}

	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(abs, wd); err == nil && !isOutside(rel) {
			return fmt.Errorf("%w: %s contains the working directory", ErrUnsafeRemove, abs)
		}
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("remove %s: %w", abs, err)
	}
	return nil
}

// isOutside reports whether a relative path climbs out of its base.
func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
