package convert

import (
	"fmt"
	"image/jpeg"
	"os"

	"golang.org/x/image/tiff"
)

// ProbeTIFF reads just enough of the file header to confirm it is
// encoded as TIFF and returns the pixel dimensions. The extension alone
// is not trusted; this catches mislabeled files before a full decode.
func ProbeTIFF(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	cfg, err := tiff.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("not a valid TIFF: %w", err)
	}

	return cfg.Width, cfg.Height, nil
}

// EncodeJPEG decodes the TIFF at srcPath and re-encodes it as a JPEG at
// dstPath with the given quality (1-100). A partially written output is
// removed on failure.
func EncodeJPEG(srcPath, dstPath string, quality int) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	img, err := tiff.Decode(src)
	if err != nil {
		return fmt.Errorf("failed to decode TIFF: %w", err)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: quality}); err != nil {
		out.Close()
		os.Remove(dstPath)
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(dstPath)
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	return nil
}
