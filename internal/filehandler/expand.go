package filehandler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when an input path does not exist.
var ErrNotFound = errors.New("path not found")

// Expand resolves one local path into candidate files for conversion.
//
// A regular file is returned as-is with no extension filtering: the
// conversion step performs the real validation on explicitly named
// files. A directory is enumerated for .tif/.tiff files, descending
// into subdirectories only when recursive is true. Entries that are
// neither regular files nor directories (broken symlinks, sockets) are
// silently skipped.
//
// Returned paths follow filesystem enumeration order and are not
// sorted; callers needing reproducible output should sort the result.
func Expand(path string, recursive bool) ([]string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if !info.IsDir() {
		log.Debug().Str("path", absPath).Msg("Input is a single file, passing through")
		return []string{absPath}, nil
	}

	files := scanDirectory(absPath, recursive)

	log.Info().
		Str("path", absPath).
		Bool("recursive", recursive).
		Int("files", len(files)).
		Msg("Directory scan complete")

	return files, nil
}

// scanDirectory collects qualifying TIFF files under dir. Unreadable
// subtrees are logged and skipped rather than failing the whole scan.
func scanDirectory(dir string, recursive bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("path", dir).Msg("Error reading directory, skipping")
		return nil
	}

	var files []string
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if recursive {
				files = append(files, scanDirectory(full, true)...)
			}
			continue
		}

		// Stat follows symlinks; anything that does not resolve to a
		// regular file is skipped.
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			log.Debug().Str("path", full).Msg("Skipping non-regular entry")
			continue
		}

		if IsTIFF(filepath.Ext(entry.Name())) {
			files = append(files, full)
		}
	}

	return files
}
