// Package lock keeps two runs from importing into the same library at once.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Libraries hands out advisory locks stored under Dir, never inside a library.
type Libraries struct {
	Dir string
}

func (l Libraries) dir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return filepath.Join(os.TempDir(), "photein", "locks")
}

// Path returns the lock file guarding root.
func (l Libraries) Path(root string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(root)))
	return filepath.Join(l.dir(), id.String()+".lock")
}

// Lock takes every library lock or none of them.
func (l Libraries) Lock(roots []string) (func() error, error) {
	if err := os.MkdirAll(l.dir(), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	var held []*flock.Flock
	release := func() error {
		var errs []error
		for _, fl := range held {
			if err := fl.Unlock(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, root := range roots {
		fl := flock.New(l.Path(root))
		ok, err := fl.TryLock()
		if err != nil {
			release()
			return nil, fmt.Errorf("acquire lock for %s: %w", root, err)
		}
		if !ok {
			release()
			return nil, fmt.Errorf("%s: another photein run is importing into this library", root)
		}
		held = append(held, fl)
	}
	return release, nil
}
