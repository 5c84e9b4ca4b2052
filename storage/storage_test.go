package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/spf13/afero"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.StorageConfig
		wantError bool
	}{
		{name: "local storage", cfg: config.StorageConfig{Type: "local", BaseDir: "artifacts"}},
		{name: "local storage uppercase", cfg: config.StorageConfig{Type: "LOCAL", BaseDir: "artifacts"}},
		{name: "local storage missing base_dir", cfg: config.StorageConfig{Type: "local"}, wantError: true},
		{name: "s3 storage", cfg: config.StorageConfig{Type: "s3", S3Bucket: "b", S3Region: "us-east-1", S3PresignExpiry: time.Hour}},
		{name: "s3 storage missing bucket", cfg: config.StorageConfig{Type: "s3", S3Region: "us-east-1"}, wantError: true},
		{name: "s3 storage missing region", cfg: config.StorageConfig{Type: "s3", S3Bucket: "b"}, wantError: true},
		{name: "unsupported storage type", cfg: config.StorageConfig{Type: "gcs"}, wantError: true},
		{name: "empty storage type", cfg: config.StorageConfig{}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(context.Background(), tt.cfg, afero.NewMemMapFs())
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s3s, ok := s.(*S3Storage); ok && s3s.presignExpiration != tt.cfg.S3PresignExpiry {
				t.Errorf("presign expiry = %v, want %v", s3s.presignExpiration, tt.cfg.S3PresignExpiry)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"screenshots/a.png":   "image/png",
		"reports/a.HTML":      "text/html; charset=utf-8",
		"runs/summary.json":   "application/json",
		"misc/archive.tar.gz": "application/octet-stream",
	}
	for key, want := range cases {
		if got := contentType(key); got != want {
			t.Errorf("contentType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestArchiver(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	blobs, err := NewLocalStorage(fs, "artifacts")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	log := logger.NewTestLogger()
	a := NewArchiver(blobs, fs, log)

	key, err := a.ArchiveScreenshot(ctx, "run-7", "search_20240115_143045.png", []byte("png"))
	if err != nil {
		t.Fatalf("ArchiveScreenshot failed: %v", err)
	}
	if key != "screenshots/run-7/search_20240115_143045.png" {
		t.Errorf("key = %s", key)
	}

	reportPath := filepath.Join("test-output", "ExtentReports", "ExtentReport_2024-01-15_14-30-45.html")
	if err := afero.WriteFile(fs, reportPath, []byte("<html>"), 0644); err != nil {
		t.Fatal(err)
	}
	key, err = a.ArchiveReport(ctx, reportPath)
	if err != nil {
		t.Fatalf("ArchiveReport failed: %v", err)
	}
	if key != "reports/ExtentReport_2024-01-15_14-30-45.html" {
		t.Errorf("key = %s", key)
	}

	data, err := afero.ReadFile(fs, filepath.Join("artifacts", "reports", "ExtentReport_2024-01-15_14-30-45.html"))
	if err != nil || !bytes.Equal(data, []byte("<html>")) {
		t.Errorf("archived report = %q, %v", data, err)
	}
	if !log.HasMessage("info", "report archived") {
		t.Error("expected report archived log entry")
	}

	if _, err := a.ArchiveReport(ctx, "missing.html"); err == nil {
		t.Error("expected error for missing report")
	}
}

func TestArchiver_RemoveReport(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	blobs, err := NewLocalStorage(fs, "artifacts")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	a := NewArchiver(blobs, fs, logger.NewTestLogger())

	name := "ExtentReport_2024-01-15_14-30-45.html"
	if err := blobs.Upload(ctx, ReportKey(name), bytes.NewReader([]byte("<html>"))); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if err := a.RemoveReport(ctx, name); err != nil {
		t.Fatalf("RemoveReport failed: %v", err)
	}
	if ok, _ := blobs.Exists(ctx, ReportKey(name)); ok {
		t.Error("archived report still exists")
	}

	if err := a.RemoveReport(ctx, "ExtentReport_never-archived.html"); err != nil {
		t.Errorf("RemoveReport of a missing report = %v, want nil", err)
	}
}
