//go:build !linux && !darwin

package fs

import "time"

func birthtime(string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
