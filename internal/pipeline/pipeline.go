// Package pipeline orchestrates one conversion run: classifying input
// locators, expanding local paths, staging Drive folders, and driving
// the conversion engine over the aggregated candidate list.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/tiff-convert/internal/convert"
	"github.com/fpang/tiff-convert/internal/drive"
	"github.com/fpang/tiff-convert/internal/filehandler"
	"github.com/fpang/tiff-convert/internal/locator"
)

// ErrRemoteServiceMissing is returned when a Drive folder locator is
// supplied but no remote service was configured.
var ErrRemoteServiceMissing = errors.New("remote folder input given but no Drive client configured")

// RemoteService is the narrow contract the pipeline needs from the
// remote-storage collaborator. *drive.Client satisfies it; tests supply
// fakes.
type RemoteService interface {
	IsReady() bool
	ListFolder(ctx context.Context, folderID string) ([]drive.File, error)
	Download(ctx context.Context, fileID, destPath string) error
}

// Options configures a pipeline run.
type Options struct {
	// Recursive descends into subdirectories of local directory inputs.
	Recursive bool

	// ArchivePath, when set, receives a zip of all converted JPEGs at
	// the end of a run.
	ArchivePath string
}

// Pipeline ties the classifier, expander, fetcher and converter
// together for one or more runs.
type Pipeline struct {
	converter *convert.Converter
	remote    RemoteService
	opts      Options
}

// New constructs a Pipeline. remote may be nil when no Drive access is
// configured; runs with only local inputs do not need it.
func New(converter *convert.Converter, remote RemoteService, opts Options) *Pipeline {
	return &Pipeline{converter: converter, remote: remote, opts: opts}
}

// Run executes one full conversion run over the given locators.
//
// The staging directory for remote downloads is created before any
// fetch and removed on every exit path. Expansion-level failures
// (missing local path, remote list or download errors, missing remote
// service) abort the run; per-file conversion failures only mark that
// file's outcome.
func (p *Pipeline) Run(ctx context.Context, inputs []string) (convert.RunStats, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	stagingDir := filepath.Join(os.TempDir(), "tiff-convert-"+runID)
	if err := os.Mkdir(stagingDir, 0o700); err != nil {
		return convert.RunStats{}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			logger.Warn().Err(err).Str("path", stagingDir).Msg("Failed to remove staging directory")
		}
	}()

	var candidates []string
	for _, raw := range inputs {
		in := locator.Classify(raw)
		logger.Debug().Str("input", raw).Stringer("kind", in.Kind).Msg("Input classified")

		switch in.Kind {
		case locator.RemoteFolder:
			if p.remote == nil || !p.remote.IsReady() {
				return convert.RunStats{}, fmt.Errorf("%w: %s", ErrRemoteServiceMissing, raw)
			}
			staged, err := p.fetchFolder(ctx, in.FolderID, stagingDir)
			if err != nil {
				return convert.RunStats{}, err
			}
			candidates = append(candidates, staged...)

		default:
			files, err := filehandler.Expand(in.Raw, p.opts.Recursive)
			if err != nil {
				return convert.RunStats{}, err
			}
			candidates = append(candidates, files...)
		}
	}

	if len(candidates) == 0 {
		logger.Info().Msg("No candidate files found, nothing to convert")
		return convert.RunStats{}, nil
	}

	logger.Info().Int("candidates", len(candidates)).Msg("Starting conversion")
	stats, outcomes := p.converter.ConvertAll(candidates)

	if p.opts.ArchivePath != "" && stats.Successful > 0 {
		if err := convert.WriteArchive(p.opts.ArchivePath, outcomes); err != nil {
			return stats, fmt.Errorf("failed to write archive: %w", err)
		}
	}

	return stats, nil
}
