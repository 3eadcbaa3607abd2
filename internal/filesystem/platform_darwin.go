//go:build darwin

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// getCreateTime returns the inode change time (macOS)
func getCreateTime(info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Ctimespec.Sec, stat.Ctimespec.Nsec)
}
