//go:build windows

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// getCreateTime returns the creation time (Windows)
func getCreateTime(info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(0, stat.CreationTime.Nanoseconds())
}
