// Package drive wraps the Google Drive v3 API as the remote source for
// TIFF inputs. The client is built once from a credentials JSON and a
// previously stored OAuth token (the standard installed-app flow) and
// passed to the pipeline as an explicit dependency.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// listPageSize is the page size for folder listings.
const listPageSize = 100

// File is one remote file entry from a folder listing.
type File struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// Client provides folder listing and file download against Drive.
type Client struct {
	svc *drivev3.Service
}

// NewClient builds an authenticated read-only Drive client.
// credentialsPath is the OAuth client JSON downloaded from the Google
// console; tokenPath holds the user token obtained during setup.
func NewClient(ctx context.Context, credentialsPath, tokenPath string) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(data, drivev3.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth token: %w", err)
	}

	svc, err := drivev3.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	log.Info().Msg("Drive client initialized")
	return &Client{svc: svc}, nil
}

// tokenFromFile reads a cached OAuth token from disk.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", path, err)
	}
	return token, nil
}

// IsReady reports whether the underlying service was initialized.
func (c *Client) IsReady() bool {
	return c != nil && c.svc != nil
}

// ListFolder returns the TIFF files in a folder, walking every page of
// the listing. The filter runs server-side: TIFF MIME type or a name
// containing .tif/.tiff (Drive's contains match is case-sensitive).
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]File, error) {
	query := fmt.Sprintf(
		"'%s' in parents and trashed = false and (mimeType = 'image/tiff' or name contains '.tif' or name contains '.tiff')",
		folderID)

	var files []File
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, size)").
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list folder %s: %w", folderID, err)
		}

		for _, f := range resp.Files {
			files = append(files, File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, Size: f.Size})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	log.Info().Str("folder_id", folderID).Int("files", len(files)).Msg("Drive folder listed")
	return files, nil
}

// Download streams one remote file's bytes into destPath. A partially
// written file is removed on failure.
func (c *Client) Download(ctx context.Context, fileID, destPath string) error {
	log.Debug().Str("file_id", fileID).Str("dest", destPath).Msg("Downloading Drive file")

	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to write staging file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to finalize staging file: %w", err)
	}

	return nil
}
