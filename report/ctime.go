package report

import (
	"os"
	"time"

	"github.com/spf13/afero"
)

// creationTime returns the file's birth time when the OS exposes it and its
// modification time otherwise. Non-OS filesystems always use the
// modification time.
func creationTime(fs afero.Fs, path string, fi os.FileInfo) time.Time {
	if _, ok := fs.(*afero.OsFs); ok {
		if t, ok := birthTime(path, fi); ok {
			return t
		}
	}
	return fi.ModTime()
}
