// downsize is a maintenance utility that shrinks JPEG files so the
// longest edge fits a maximum dimension. It exists for preparing
// oversized conversion outputs for sharing and is not part of the
// conversion pipeline.
package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/fpang/tiff-convert/internal/logging"
)

var (
	directoryFlag    string
	maxDimensionFlag int
	qualityFlag      int
	suffixFlag       string
)

var rootCmd = &cobra.Command{
	Use:   "downsize",
	Short: "Shrink JPEG files in a directory to a maximum dimension",
	Long: `downsize scans a directory (top level only) for JPEG files and writes
a resized copy of each one whose longest edge exceeds the maximum
dimension. Smaller files are left alone.

Examples:
  downsize --directory ./jpeg
  downsize -d ./jpeg --max-dimension 1600 --quality 90 --suffix _web`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&directoryFlag, "directory", "d", ".", "Directory containing JPEGs to downsize")
	rootCmd.Flags().IntVar(&maxDimensionFlag, "max-dimension", 2048, "Maximum width or height in pixels")
	rootCmd.Flags().IntVar(&qualityFlag, "quality", 85, "JPEG quality for resized copies (1-100)")
	rootCmd.Flags().StringVar(&suffixFlag, "suffix", "_small", "Filename suffix for resized copies")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	entries, err := os.ReadDir(directoryFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", directoryFlag).Msg("Failed to read directory")
	}

	resized, skipped, failed := 0, 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".jpg" && ext != ".jpeg" {
			continue
		}

		path := filepath.Join(directoryFlag, entry.Name())
		did, err := downsizeFile(path)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to downsize, skipping")
			failed++
		case did:
			resized++
		default:
			skipped++
		}
	}

	log.Info().
		Int("resized", resized).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("Downsize complete")
}

// downsizeFile writes a resized copy of the JPEG at path when it
// exceeds the maximum dimension. Returns false when the file is already
// small enough.
func downsizeFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}

	img, err := jpeg.Decode(f)
	f.Close()
	if err != nil {
		return false, fmt.Errorf("failed to decode JPEG: %w", err)
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	if origWidth <= maxDimensionFlag && origHeight <= maxDimensionFlag {
		log.Debug().Str("path", path).Msg("Already within limit, skipping")
		return false, nil
	}

	newWidth, newHeight := fitDimensions(origWidth, origHeight, maxDimensionFlag)
	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	ext := filepath.Ext(path)
	outPath := strings.TrimSuffix(path, ext) + suffixFlag + ext

	out, err := os.Create(outPath)
	if err != nil {
		return false, fmt.Errorf("failed to create output: %w", err)
	}
	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: qualityFlag}); err != nil {
		out.Close()
		os.Remove(outPath)
		return false, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("failed to finalize output: %w", err)
	}

	log.Info().
		Str("input", path).
		Str("output", outPath).
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Msg("Downsized")

	return true, nil
}

// fitDimensions scales (width, height) down so the longest edge equals
// maxDimension, preserving aspect ratio.
func fitDimensions(width, height, maxDimension int) (int, int) {
	if width > height {
		return maxDimension, int(float64(height) * float64(maxDimension) / float64(width))
	}
	return int(float64(width) * float64(maxDimension) / float64(height)), maxDimension
}
