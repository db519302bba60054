package fileutil

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// FindFileCaseInsensitiveFS searches dir in fsys for filename, ignoring case.
// MIDI collections copied from old Windows machines often mix "SONG.MID" and
// "song.mid" freely.
//
// The returned path is relative to the root of fsys and uses forward slashes.
// A missing file yields an error wrapping fs.ErrNotExist.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return path.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// SplitPath splits an OS path into a directory usable with NewRealFS and the
// file name inside it.
func SplitPath(p string) (dir, name string) {
	return filepath.Dir(p), filepath.Base(p)
}
