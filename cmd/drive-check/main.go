// drive-check verifies that the stored Google Drive credentials and
// OAuth token work by listing the TIFF files visible at the Drive root.
// Run it after setup, before pointing tiff-convert at real folders.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/tiff-convert/internal/drive"
	"github.com/fpang/tiff-convert/internal/logging"
)

var (
	credentialsFlag string
	tokenFlag       string
	folderFlag      string
)

var rootCmd = &cobra.Command{
	Use:   "drive-check",
	Short: "Smoke-test the stored Google Drive credentials",
	Long: `drive-check builds a Drive client from the same credentials and token
that tiff-convert uses and performs a single folder listing to confirm
the stored OAuth state is still valid.

Examples:
  drive-check
  drive-check --folder 1AbCdEf
  drive-check --credentials ./credentials.json --token ./token.json`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVar(&credentialsFlag, "credentials", "", "Google OAuth credentials JSON (default: ~/.tiff-convert/credentials.json)")
	rootCmd.Flags().StringVar(&tokenFlag, "token", "", "Stored Google OAuth token (default: ~/.tiff-convert/token.json)")
	rootCmd.Flags().StringVar(&folderFlag, "folder", "root", "Drive folder ID to list")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	ctx := context.Background()

	client, err := drive.NewClient(ctx, drive.CredentialsPath(credentialsFlag), drive.TokenPath(tokenFlag))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Drive client")
	}

	files, err := client.ListFolder(ctx, folderFlag)
	if err != nil {
		log.Fatal().Err(err).Str("folder", folderFlag).Msg("Drive listing failed - credentials or token invalid")
	}

	log.Info().
		Str("folder", folderFlag).
		Int("tiff_files", len(files)).
		Msg("Drive credentials OK")
}
