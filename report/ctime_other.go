//go:build !linux && !darwin && !windows

package report

import (
	"os"
	"time"
)

func birthTime(string, os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
