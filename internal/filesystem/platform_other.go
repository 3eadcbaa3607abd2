//go:build !linux && !darwin && !windows

package filesystem

import (
	"os"
	"time"
)

func getCreateTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
