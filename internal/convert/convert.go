// Package convert validates TIFF files and re-encodes them as JPEG,
// reporting a per-file Outcome for every attempt and aggregate RunStats
// for a batch. A failed file never aborts a batch.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/tiff-convert/internal/filehandler"
)

// DefaultQuality is the JPEG encode quality used when none is configured.
const DefaultQuality = 80

// Options configures a Converter.
type Options struct {
	// OutputDir receives converted files. Empty writes each JPEG next
	// to its input.
	OutputDir string

	// Quality is the JPEG encode quality, 1-100.
	Quality int

	// Overwrite replaces an existing destination file. When false, a
	// conversion whose destination already exists fails with a
	// per-file outcome instead of clobbering it.
	Overwrite bool

	// Workers bounds concurrent conversions. Values <= 1 convert
	// sequentially in input order.
	Workers int
}

// Converter turns TIFF files into JPEGs.
type Converter struct {
	opts Options

	// encode is swapped out in tests to inject codec failures.
	encode func(srcPath, dstPath string, quality int) error
}

// New creates a Converter. An out-of-range quality falls back to
// DefaultQuality.
func New(opts Options) *Converter {
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	return &Converter{opts: opts, encode: EncodeJPEG}
}

// ConvertOne validates and converts a single file. All failure is
// captured in the returned Outcome; it never returns an error.
func (c *Converter) ConvertOne(path string) Outcome {
	start := time.Now()
	out := Outcome{InputPath: path}

	fail := func(msg string) Outcome {
		out.ErrMessage = msg
		out.Duration = time.Since(start)
		log.Warn().Str("input", path).Str("error", msg).Msg("Conversion failed")
		return out
	}

	if err := c.validate(path); err != nil {
		return fail(err.Error())
	}

	dst := c.outputPath(path)

	if !c.opts.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fail(fmt.Sprintf("destination already exists: %s", dst))
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fail(fmt.Sprintf("failed to create output directory: %v", err))
	}

	if err := c.encode(path, dst, c.opts.Quality); err != nil {
		return fail(err.Error())
	}

	out.OutputPath = dst
	out.Succeeded = true
	out.Duration = time.Since(start)

	log.Info().
		Str("input", path).
		Str("output", dst).
		Int("quality", c.opts.Quality).
		Dur("duration", out.Duration).
		Msg("Converted")

	return out
}

// validate checks that path is an existing regular file with a TIFF
// extension whose encoded format really is TIFF.
func (c *Converter) validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}

	ext := filepath.Ext(path)
	if !filehandler.IsTIFF(ext) {
		return fmt.Errorf("unsupported extension %q: expected .tif or .tiff", ext)
	}

	width, height, err := ProbeTIFF(path)
	if err != nil {
		return err
	}

	log.Debug().
		Str("path", path).
		Int("width", width).
		Int("height", height).
		Msg("TIFF validated")

	logSourceEXIF(path)

	return nil
}

// logSourceEXIF logs capture metadata from the source file when
// present. Metadata problems never affect conversion.
func logSourceEXIF(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	exifData, err := imagemeta.Decode(f)
	if err != nil {
		log.Debug().Str("path", path).Msg("No readable EXIF metadata")
		return
	}

	camera := strings.TrimSpace(exifData.Make + " " + exifData.Model)
	if camera == "" && exifData.DateTimeOriginal().IsZero() {
		return
	}

	log.Debug().
		Str("path", path).
		Str("camera", camera).
		Time("taken", exifData.DateTimeOriginal()).
		Msg("Source EXIF metadata")
}

// outputPath computes the destination JPEG path for an input file.
func (c *Converter) outputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".jpg"
	dir := c.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}

// ConvertAll converts every path and returns the aggregate statistics
// along with the per-file outcomes, indexed to match the input order.
// With Workers > 1 the conversions run on a bounded pool with
// mutex-guarded accumulation. Either way a failed file never aborts
// the batch.
func (c *Converter) ConvertAll(paths []string) (RunStats, []Outcome) {
	var stats RunStats
	if len(paths) == 0 {
		return stats, nil
	}

	outcomes := make([]Outcome, len(paths))

	if c.opts.Workers <= 1 {
		for i, p := range paths {
			outcomes[i] = c.ConvertOne(p)
			stats.add(outcomes[i])
		}
	} else {
		var mu sync.Mutex
		g := new(errgroup.Group)
		g.SetLimit(c.opts.Workers)
		for i, p := range paths {
			i, p := i, p
			g.Go(func() error {
				o := c.ConvertOne(p)
				mu.Lock()
				outcomes[i] = o
				stats.add(o)
				mu.Unlock()
				return nil
			})
		}
		// Workers never return errors; all failure lives in outcomes.
		_ = g.Wait()
	}

	log.Info().
		Int("total", stats.Total).
		Int("successful", stats.Successful).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("Batch conversion complete")

	return stats, outcomes
}
