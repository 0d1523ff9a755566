package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

func TestWriteArchive(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	if err := os.WriteFile(a, []byte("jpeg-a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("jpeg-b"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcomes := []Outcome{
		{InputPath: "a.tif", OutputPath: a, Succeeded: true},
		{InputPath: "bad.tif", Succeeded: false, ErrMessage: "not a valid TIFF"},
		{InputPath: "b.tif", OutputPath: b, Succeeded: true},
	}

	archivePath := filepath.Join(dir, "out.zip")
	if err := WriteArchive(archivePath, outcomes); err != nil {
		t.Fatalf("WriteArchive() error = %v", err)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()

	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}

	if len(names) != 2 {
		t.Errorf("archive has %d entries, want 2", len(names))
	}
	if !names["a.jpg"] || !names["b.jpg"] {
		t.Errorf("archive entries = %v, want a.jpg and b.jpg", names)
	}
}

func TestWriteArchiveMissingOutput(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "out.zip")

	outcomes := []Outcome{
		{InputPath: "a.tif", OutputPath: filepath.Join(dir, "gone.jpg"), Succeeded: true},
	}

	if err := WriteArchive(archivePath, outcomes); err == nil {
		t.Fatal("WriteArchive() error = nil for missing output file")
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Error("partial archive left behind after failure")
	}
}
