//go:build darwin

package fs

import (
	"time"

	"golang.org/x/sys/unix"
)

func birthtime(path string) (time.Time, bool, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(st.Birthtimespec.Unix()), true, nil
}
