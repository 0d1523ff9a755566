package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/fpang/tiff-convert/internal/convert"
	"github.com/fpang/tiff-convert/internal/drive"
)

// tiffBytes encodes a small solid-color TIFF in memory.
func tiffBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode tiff: %v", err)
	}
	return buf.Bytes()
}

func writeTestTIFF(t *testing.T, path string, width, height int) {
	t.Helper()
	if err := os.WriteFile(path, tiffBytes(t, width, height), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// fakeRemote is an in-memory RemoteService for pipeline tests. It
// records the staging directory used so tests can assert cleanup.
type fakeRemote struct {
	ready       bool
	files       []drive.File
	content     map[string][]byte
	listErr     error
	downloadErr map[string]error

	listCalls  int
	stagingDir string
}

func (f *fakeRemote) IsReady() bool { return f.ready }

func (f *fakeRemote) ListFolder(ctx context.Context, folderID string) ([]drive.File, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeRemote) Download(ctx context.Context, fileID, destPath string) error {
	f.stagingDir = filepath.Dir(destPath)
	if err := f.downloadErr[fileID]; err != nil {
		return err
	}
	return os.WriteFile(destPath, f.content[fileID], 0o644)
}

func newPipeline(remote RemoteService, outputDir string, opts Options) *Pipeline {
	conv := convert.New(convert.Options{OutputDir: outputDir, Quality: 80})
	return New(conv, remote, opts)
}

func TestRunLocalOnly(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeTestTIFF(t, filepath.Join(srcDir, "a.tif"), 4, 4)
	writeTestTIFF(t, filepath.Join(srcDir, "b.tiff"), 4, 4)
	if err := os.WriteFile(filepath.Join(srcDir, "c.tif"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newPipeline(nil, outDir, Options{})
	stats, err := p.Run(context.Background(), []string{srcDir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Total != 3 || stats.Successful != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want total 3, successful 2, failed 1", stats)
	}
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestRunEmptyInputs(t *testing.T) {
	remote := &fakeRemote{ready: true}
	p := newPipeline(remote, t.TempDir(), Options{})

	stats, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Total != 0 || stats.Successful != 0 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
	if remote.listCalls != 0 {
		t.Errorf("remote listed %d times for empty input, want 0", remote.listCalls)
	}
}

func TestRunInputsExpandToNothing(t *testing.T) {
	remote := &fakeRemote{ready: true}
	p := newPipeline(remote, t.TempDir(), Options{})

	stats, err := p.Run(context.Background(), []string{
		t.TempDir(),
		"https://drive.google.com/drive/folders/EMPTY",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
	if remote.listCalls != 1 {
		t.Errorf("remote listed %d times, want 1", remote.listCalls)
	}
}

func TestRunRemoteServiceMissing(t *testing.T) {
	p := newPipeline(nil, t.TempDir(), Options{})

	_, err := p.Run(context.Background(), []string{"https://drive.google.com/drive/folders/ABC"})
	if !errors.Is(err, ErrRemoteServiceMissing) {
		t.Errorf("Run() error = %v, want ErrRemoteServiceMissing", err)
	}
}

func TestRunMissingLocalPathAbortsRun(t *testing.T) {
	p := newPipeline(nil, t.TempDir(), Options{})

	_, err := p.Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("Run() error = nil for missing local path")
	}
}

func TestRunRemoteFolder(t *testing.T) {
	outDir := t.TempDir()
	remote := &fakeRemote{
		ready: true,
		files: []drive.File{
			{ID: "f1", Name: "one.tif", MimeType: "image/tiff", Size: 10},
			{ID: "f2", Name: "two.tif", MimeType: "image/tiff", Size: 10},
		},
		content: map[string][]byte{
			"f1": tiffBytes(t, 4, 4),
			"f2": tiffBytes(t, 4, 4),
		},
	}

	p := newPipeline(remote, outDir, Options{})
	stats, err := p.Run(context.Background(), []string{"https://drive.google.com/drive/folders/ABC"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Total != 2 || stats.Successful != 2 {
		t.Errorf("stats = %+v, want 2 successes", stats)
	}
	if remote.stagingDir == "" {
		t.Fatal("no download recorded")
	}
	if _, err := os.Stat(remote.stagingDir); !os.IsNotExist(err) {
		t.Error("staging directory still exists after Run")
	}
}

func TestRunMixedLocalAndRemote(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeTestTIFF(t, filepath.Join(srcDir, "local.tif"), 4, 4)

	remote := &fakeRemote{
		ready:   true,
		files:   []drive.File{{ID: "f1", Name: "remote.tif", MimeType: "image/tiff"}},
		content: map[string][]byte{"f1": tiffBytes(t, 4, 4)},
	}

	p := newPipeline(remote, outDir, Options{})
	stats, err := p.Run(context.Background(), []string{
		srcDir,
		"https://drive.google.com/drive/folders/ABC",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Total != 2 || stats.Successful != 2 {
		t.Errorf("stats = %+v, want 2 successes", stats)
	}
}

func TestRunListFailureAbortsRun(t *testing.T) {
	remote := &fakeRemote{ready: true, listErr: errors.New("list exploded")}
	p := newPipeline(remote, t.TempDir(), Options{})

	_, err := p.Run(context.Background(), []string{"https://drive.google.com/drive/folders/ABC"})
	if err == nil || !strings.Contains(err.Error(), "list exploded") {
		t.Fatalf("Run() error = %v, want list failure", err)
	}
}

func TestRunDownloadFailureAbortsAndCleans(t *testing.T) {
	remote := &fakeRemote{
		ready: true,
		files: []drive.File{
			{ID: "f1", Name: "one.tif"},
			{ID: "f2", Name: "two.tif"},
		},
		content:     map[string][]byte{"f1": tiffBytes(t, 4, 4)},
		downloadErr: map[string]error{"f2": errors.New("download exploded")},
	}

	p := newPipeline(remote, t.TempDir(), Options{})
	_, err := p.Run(context.Background(), []string{"https://drive.google.com/drive/folders/ABC"})
	if err == nil || !strings.Contains(err.Error(), "download exploded") {
		t.Fatalf("Run() error = %v, want download failure", err)
	}

	if _, statErr := os.Stat(remote.stagingDir); !os.IsNotExist(statErr) {
		t.Error("staging directory still exists after aborted Run")
	}
}

// A staged file that fails conversion is absorbed into the stats; the
// run still completes and staging is cleaned up.
func TestRunStagedCodecFailure(t *testing.T) {
	remote := &fakeRemote{
		ready: true,
		files: []drive.File{
			{ID: "f1", Name: "good.tif"},
			{ID: "f2", Name: "bad.tif"},
		},
		content: map[string][]byte{
			"f1": tiffBytes(t, 4, 4),
			"f2": []byte("not a tiff at all"),
		},
	}

	p := newPipeline(remote, t.TempDir(), Options{})
	stats, err := p.Run(context.Background(), []string{"https://drive.google.com/drive/folders/ABC"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Total != 2 || stats.Successful != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 success and 1 failure", stats)
	}
	if _, statErr := os.Stat(remote.stagingDir); !os.IsNotExist(statErr) {
		t.Error("staging directory still exists after Run")
	}
}

func TestRunRecursiveLocal(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeTestTIFF(t, filepath.Join(srcDir, "top.tif"), 4, 4)
	if err := os.MkdirAll(filepath.Join(srcDir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestTIFF(t, filepath.Join(srcDir, "sub", "nested.tif"), 4, 4)

	p := newPipeline(nil, outDir, Options{Recursive: true})
	stats, err := p.Run(context.Background(), []string{srcDir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Total != 2 || stats.Successful != 2 {
		t.Errorf("recursive stats = %+v, want 2 successes", stats)
	}

	p = newPipeline(nil, t.TempDir(), Options{Recursive: false})
	stats, err = p.Run(context.Background(), []string{srcDir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("non-recursive stats = %+v, want 1 file", stats)
	}
}

func TestRunWritesArchive(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeTestTIFF(t, filepath.Join(srcDir, "a.tif"), 4, 4)

	archivePath := filepath.Join(t.TempDir(), "converted.zip")
	p := newPipeline(nil, outDir, Options{ArchivePath: archivePath})

	stats, err := p.Run(context.Background(), []string{srcDir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Successful != 1 {
		t.Fatalf("stats = %+v, want 1 success", stats)
	}
	if _, err := os.Stat(archivePath); err != nil {
		t.Errorf("archive missing: %v", err)
	}
}
