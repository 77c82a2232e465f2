package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	appErrors "photein/internal/errors"
)

// MaxCollisionSuffix bounds the "+N" counter.
const MaxCollisionSuffix = 9

// CollisionResolver picks a name that does not clash with files already in
// the destination directory. The first file keeps the bare name and later
// ones get "+1", "+2" and so on.
type CollisionResolver struct {
	FS FileSystem
}

// Resolve returns desiredPath or its next free "+N" variant. It only reads
// the directory, so repeated calls agree until something is written.
func (c CollisionResolver) Resolve(desiredPath string) (string, error) {
	dir := filepath.Dir(desiredPath)
	base := filepath.Base(desiredPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	entries, err := c.FS.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return desiredPath, nil
		}
		return "", appErrors.Wrap(appErrors.IOFailure, "scan", dir, err)
	}

	bareTaken := false
	highest := 0
	for _, entry := range entries {
		name := entry.Name()
		if name == base {
			bareTaken = true
			continue
		}
		if counter, ok := collisionCounter(name, stem, ext); ok && counter > highest {
			highest = counter
		}
	}

	if !bareTaken && highest == 0 {
		return desiredPath, nil
	}
	next := highest + 1
	if next > MaxCollisionSuffix {
		return "", appErrors.Wrap(appErrors.Collision, "resolve", desiredPath, appErrors.ErrUnresolvedCollision)
	}
	return filepath.Join(dir, fmt.Sprintf("%s+%d%s", stem, next, ext)), nil
}

// collisionCounter parses N from "<stem>+N<ext>".
func collisionCounter(name, stem, ext string) (int, bool) {
	if !strings.HasPrefix(name, stem+"+") || !strings.HasSuffix(name, ext) {
		return 0, false
	}
	digits := name[len(stem)+1 : len(name)-len(ext)]
	if len(digits) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
