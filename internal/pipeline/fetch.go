package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// fetchFolder lists the TIFF files in a Drive folder and downloads each
// into the staging directory, returning the staged local paths in
// listing order.
//
// Downloads are strictly sequential and a single failure aborts the
// whole folder: a remote source is all-or-nothing, unlike the per-file
// isolation of local expansion and conversion. Remote files sharing a
// name overwrite each other in staging; the listing order decides which
// copy survives.
func (p *Pipeline) fetchFolder(ctx context.Context, folderID, stagingDir string) ([]string, error) {
	files, err := p.remote.ListFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list Drive folder %s: %w", folderID, err)
	}

	if len(files) == 0 {
		log.Info().Str("folder_id", folderID).Msg("Drive folder has no TIFF files")
		return nil, nil
	}

	staged := make([]string, 0, len(files))
	for _, f := range files {
		dest := filepath.Join(stagingDir, f.Name)

		log.Debug().
			Str("file_id", f.ID).
			Str("name", f.Name).
			Int64("size", f.Size).
			Msg("Staging Drive file")

		if err := p.remote.Download(ctx, f.ID, dest); err != nil {
			return nil, fmt.Errorf("failed to download %s from folder %s: %w", f.Name, folderID, err)
		}
		staged = append(staged, dest)
	}

	log.Info().Str("folder_id", folderID).Int("staged", len(staged)).Msg("Drive folder staged")
	return staged, nil
}
