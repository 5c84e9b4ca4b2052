package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newMemStorage(t *testing.T) (*LocalStorage, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := NewLocalStorage(fs, "artifacts")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return s, fs
}

func TestNewLocalStorage(t *testing.T) {
	tests := []struct {
		name      string
		baseDir   string
		wantError bool
	}{
		{name: "valid base directory", baseDir: "artifacts"},
		{name: "nested directory", baseDir: "test-output/artifacts/run"},
		{name: "empty base directory", baseDir: "", wantError: true},
		{name: "dot as base directory", baseDir: ".", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			s, err := NewLocalStorage(fs, tt.baseDir)
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s == nil {
				t.Fatal("expected storage but got nil")
			}
			if ok, _ := afero.DirExists(fs, tt.baseDir); !ok {
				t.Errorf("base directory %s was not created", tt.baseDir)
			}
		})
	}
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, fs := newMemStorage(t)

	key := ScreenshotKey("run-1", "search_20240115_143045.png")
	if err := s.Upload(ctx, key, strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	data, err := afero.ReadFile(fs, filepath.Join("artifacts", "screenshots", "run-1", "search_20240115_143045.png"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("content mismatch: got %q", data)
	}

	rc, err := s.Download(ctx, key)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "png-bytes" {
		t.Errorf("downloaded %q", got)
	}

	if ok, err := s.Exists(ctx, key); err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}

	url, err := s.GetURL(ctx, key)
	if err != nil {
		t.Fatalf("GetURL failed: %v", err)
	}
	if !strings.HasSuffix(url, "search_20240115_143045.png") {
		t.Errorf("unexpected url %s", url)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if ok, _ := s.Exists(ctx, key); ok {
		t.Error("file still exists after delete")
	}
}

func TestLocalStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemStorage(t)

	if _, err := s.Download(ctx, "missing.png"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Download: expected ErrFileNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing.png"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Delete: expected ErrFileNotFound, got %v", err)
	}
	if _, err := s.GetURL(ctx, "missing.png"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("GetURL: expected ErrFileNotFound, got %v", err)
	}
	if ok, err := s.Exists(ctx, "missing.png"); ok || err != nil {
		t.Errorf("Exists = %v, %v; want false, nil", ok, err)
	}
}

func TestLocalStorage_PathTraversalPrevention(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemStorage(t)

	paths := []string{"", ".", "..", "../outside.txt", "reports/../../outside.txt"}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			err := s.Upload(ctx, p, bytes.NewReader([]byte("x")))
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Upload(%q): expected ErrInvalidPath, got %v", p, err)
			}
		})
	}

	// Cleaned paths that stay inside the base directory are allowed.
	if err := s.Upload(ctx, "reports/../reports/ok.html", strings.NewReader("ok")); err != nil {
		t.Errorf("unexpected error for contained path: %v", err)
	}
}

func TestLocalStorage_OsFs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(afero.NewOsFs(), filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := s.Upload(ctx, ReportKey("ExtentReport_2024-01-15_14-30-45.html"), strings.NewReader("<html>")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	url, err := s.GetURL(ctx, ReportKey("ExtentReport_2024-01-15_14-30-45.html"))
	if err != nil {
		t.Fatalf("GetURL failed: %v", err)
	}
	if want := filepath.Join(dir, "artifacts", "reports", "ExtentReport_2024-01-15_14-30-45.html"); url != want {
		t.Errorf("url = %s, want %s", url, want)
	}
}
