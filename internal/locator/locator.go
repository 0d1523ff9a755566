// Package locator classifies raw user-supplied input strings into local
// filesystem paths and Google Drive folder references. Classification is
// pure string work: no filesystem or network access happens here.
package locator

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind distinguishes the two input source types.
type Kind int

const (
	// Local is a filesystem path (file or directory).
	Local Kind = iota
	// RemoteFolder is a Drive folder reference carrying a folder ID.
	RemoteFolder
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k == RemoteFolder {
		return "remote-folder"
	}
	return "local"
}

// Input is the classification result for one raw locator string.
// FolderID is set only when Kind is RemoteFolder.
type Input struct {
	Kind     Kind
	Raw      string
	FolderID string
}

// driveDomainToken must appear in the URL host for an input to be
// treated as a Drive reference.
const driveDomainToken = "drive"

// folderIDPatterns are tried in order against the URL's path plus query;
// the first match wins. These cover the three Drive URL shapes:
// /drive/folders/<id>, /open?id=<id>, and /d/<id>.
var folderIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/folders/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?:^|[?&])id=([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`),
}

// Classify decides whether input names a local path or a Drive folder.
// Anything that does not parse as a URL, or whose host lacks the Drive
// domain token, is Local with the raw string untouched. A Drive-looking
// URL with no extractable folder ID also degrades to Local: it will fail
// later during expansion as a missing path, which beats guessing an ID.
func Classify(input string) Input {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" || !strings.Contains(strings.ToLower(u.Host), driveDomainToken) {
		return Input{Kind: Local, Raw: input}
	}

	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	for _, re := range folderIDPatterns {
		if m := re.FindStringSubmatch(target); m != nil {
			return Input{Kind: RemoteFolder, Raw: input, FolderID: m[1]}
		}
	}

	return Input{Kind: Local, Raw: input}
}
