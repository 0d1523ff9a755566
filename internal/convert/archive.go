package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
)

// WriteArchive bundles the JPEG outputs of the successful outcomes into
// a zip file at archivePath. Failed outcomes are skipped. Entries are
// stored under their base names.
func WriteArchive(archivePath string, outcomes []Outcome) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(f)
	added := 0

	for _, o := range outcomes {
		if !o.Succeeded {
			continue
		}

		src, err := os.Open(o.OutputPath)
		if err != nil {
			zw.Close()
			f.Close()
			os.Remove(archivePath)
			return fmt.Errorf("failed to open %s for archiving: %w", o.OutputPath, err)
		}

		w, err := zw.Create(filepath.Base(o.OutputPath))
		if err == nil {
			_, err = io.Copy(w, src)
		}
		src.Close()
		if err != nil {
			zw.Close()
			f.Close()
			os.Remove(archivePath)
			return fmt.Errorf("failed to archive %s: %w", o.OutputPath, err)
		}
		added++
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(archivePath)
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(archivePath)
		return fmt.Errorf("failed to close archive: %w", err)
	}

	log.Info().Str("path", archivePath).Int("entries", added).Msg("Archive written")
	return nil
}
