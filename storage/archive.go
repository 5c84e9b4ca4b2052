package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/spf13/afero"
)

// Archiver copies run artifacts into blob storage.
type Archiver struct {
	blobs  BlobStorage
	fs     afero.Fs
	logger logger.Logger
}

// NewArchiver reads local artifacts from fs and writes them to blobs.
func NewArchiver(blobs BlobStorage, fs afero.Fs, log logger.Logger) *Archiver {
	return &Archiver{blobs: blobs, fs: fs, logger: log}
}

// ArchiveScreenshot stores a PNG under the run's screenshot prefix and
// returns its key.
func (a *Archiver) ArchiveScreenshot(ctx context.Context, runID, fileName string, data []byte) (string, error) {
	key := ScreenshotKey(runID, fileName)
	if err := a.blobs.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to archive screenshot: %w", err)
	}

	a.logger.Debug(ctx, "screenshot archived", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})
	return key, nil
}

// ArchiveReport uploads the report file at localPath and returns its key.
func (a *Archiver) ArchiveReport(ctx context.Context, localPath string) (string, error) {
	file, err := a.fs.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open report: %w", err)
	}
	defer file.Close()

	key := ReportKey(filepath.Base(localPath))
	if err := a.blobs.Upload(ctx, key, file); err != nil {
		return "", fmt.Errorf("failed to archive report: %w", err)
	}

	url, err := a.blobs.GetURL(ctx, key)
	if err != nil {
		url = ""
	}
	a.logger.Info(ctx, "report archived", map[string]interface{}{
		"key": key,
		"url": url,
	})
	return key, nil
}

// RemoveReport deletes the archived copy of a report. A report that was
// never archived is not an error.
func (a *Archiver) RemoveReport(ctx context.Context, fileName string) error {
	key := ReportKey(fileName)
	if err := a.blobs.Delete(ctx, key); err != nil && !errors.Is(err, ErrFileNotFound) {
		return fmt.Errorf("failed to remove archived report: %w", err)
	}

	a.logger.Debug(ctx, "archived report removed", map[string]interface{}{
		"key": key,
	})
	return nil
}
