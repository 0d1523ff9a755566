// Package filehandler resolves local input paths into lists of candidate
// TIFF files for conversion.
package filehandler

import "strings"

// SupportedExtensions maps the accepted TIFF file extensions to their
// MIME type.
var SupportedExtensions = map[string]string{
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// IsTIFF returns true if the file extension (with leading dot) names a
// TIFF file. The check is case-insensitive.
func IsTIFF(ext string) bool {
	_, ok := SupportedExtensions[strings.ToLower(ext)]
	return ok
}
