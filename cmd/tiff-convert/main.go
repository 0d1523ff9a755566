package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/tiff-convert/internal/convert"
	"github.com/fpang/tiff-convert/internal/drive"
	"github.com/fpang/tiff-convert/internal/locator"
	"github.com/fpang/tiff-convert/internal/logging"
	"github.com/fpang/tiff-convert/internal/pipeline"
)

// CLI flags
var (
	qualityFlag     int
	outputDirFlag   string
	recursiveFlag   bool
	overwriteFlag   bool
	workersFlag     int
	zipFlag         string
	credentialsFlag string
	tokenFlag       string
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "tiff-convert [paths or Drive folder URLs...]",
	Short: "Batch-convert TIFF images to JPEG",
	Long: `tiff-convert converts TIFF images to JPEG, taking inputs from local
files, directory trees, and Google Drive folder URLs in any mix.

Drive folders are staged into a temporary directory before conversion;
the staging area is removed when the run finishes, whatever the outcome.
Each file converts independently: a bad file is reported and counted,
never aborting the rest of the run.

Examples:
  tiff-convert scan001.tif scan002.tif
  tiff-convert --recursive --output-dir ./jpeg ./scans
  tiff-convert --quality 92 "https://drive.google.com/drive/folders/1AbCdEf"
  tiff-convert --workers 4 --zip converted.zip ./scans`,
	Args: cobra.ArbitraryArgs,
	Run:  runMain,
}

func init() {
	rootCmd.Flags().IntVarP(&qualityFlag, "quality", "q", convert.DefaultQuality, "JPEG quality (1-100)")
	rootCmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory for converted JPEGs (default: next to each input)")
	rootCmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", false, "Descend into subdirectories of directory inputs")
	rootCmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Replace existing destination files")
	rootCmd.Flags().IntVar(&workersFlag, "workers", 1, "Concurrent conversion workers")
	rootCmd.Flags().StringVar(&zipFlag, "zip", "", "Write all converted JPEGs into a zip archive at this path")
	rootCmd.Flags().StringVar(&credentialsFlag, "credentials", "", "Google OAuth credentials JSON (default: ~/.tiff-convert/credentials.json)")
	rootCmd.Flags().StringVar(&tokenFlag, "token", "", "Stored Google OAuth token (default: ~/.tiff-convert/token.json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	if qualityFlag < 1 || qualityFlag > 100 {
		log.Fatal().Int("quality", qualityFlag).Msg("Quality must be between 1 and 100")
	}

	ctx := context.Background()

	// The Drive client is only constructed when an input actually
	// needs it, so local-only runs work without any credentials.
	var remote pipeline.RemoteService
	if hasRemoteInput(args) {
		client, err := drive.NewClient(ctx, drive.CredentialsPath(credentialsFlag), drive.TokenPath(tokenFlag))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Drive client")
		}
		remote = client
	}

	converter := convert.New(convert.Options{
		OutputDir: outputDirFlag,
		Quality:   qualityFlag,
		Overwrite: overwriteFlag,
		Workers:   workersFlag,
	})

	p := pipeline.New(converter, remote, pipeline.Options{
		Recursive:   recursiveFlag,
		ArchivePath: zipFlag,
	})

	stats, err := p.Run(ctx, args)
	if err != nil {
		log.Fatal().Err(err).Msg("conversion run failed")
	}

	printSummary(stats)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}

// hasRemoteInput reports whether any argument classifies as a Drive
// folder reference.
func hasRemoteInput(args []string) bool {
	for _, a := range args {
		if locator.Classify(a).Kind == locator.RemoteFolder {
			return true
		}
	}
	return false
}

// printSummary writes the human-readable run summary to stdout.
func printSummary(stats convert.RunStats) {
	fmt.Printf("\nConversion complete: %d total, %d succeeded, %d failed (%.1fs)\n",
		stats.Total, stats.Successful, stats.Failed, stats.Duration.Seconds())
}
