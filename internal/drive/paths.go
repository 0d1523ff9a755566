package drive

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	configDir       = ".tiff-convert"
	credentialsFile = "credentials.json"
	tokenFile       = "token.json"
)

// CredentialsPath resolves the OAuth client credentials location.
// Priority order:
//  1. explicit flag value
//  2. TIFF_CONVERT_CREDENTIALS environment variable
//  3. ~/.tiff-convert/credentials.json
func CredentialsPath(flagValue string) string {
	return resolvePath(flagValue, "TIFF_CONVERT_CREDENTIALS", credentialsFile)
}

// TokenPath resolves the stored OAuth token location.
// Priority order:
//  1. explicit flag value
//  2. TIFF_CONVERT_TOKEN environment variable
//  3. ~/.tiff-convert/token.json
func TokenPath(flagValue string) string {
	return resolvePath(flagValue, "TIFF_CONVERT_TOKEN", tokenFile)
}

func resolvePath(flagValue, envVar, defaultName string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envVar); v != "" {
		log.Debug().Str("env", envVar).Msg("Using path from environment variable")
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultName
	}
	return filepath.Join(home, configDir, defaultName)
}
