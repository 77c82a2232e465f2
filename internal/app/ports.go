package app

import (
	"context"
	"io/fs"
	"time"

	"photein/internal/domain"
)

type FileSystem interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	CopyFile(src, dst string) error
	Rename(src, dst string) error
	Remove(path string) error
	Chmod(path string, mode fs.FileMode) error
	// Birthtime reports ok=false when the platform or filesystem does not
	// record creation time.
	Birthtime(path string) (t time.Time, ok bool, err error)
}

// MetadataReader extracts embedded metadata. Absent data is reported as nil
// fields, a missing tool as an error wrapping errors.ErrToolUnavailable.
type MetadataReader interface {
	ReadMetadata(ctx context.Context, path string) (domain.Metadata, error)
}

// ImageOptimizer writes job.Target and reports false when it declined.
type ImageOptimizer interface {
	OptimizeImage(ctx context.Context, job domain.ImageJob) (bool, error)
}

// VideoOptimizer transcodes job.Source into job.Target, reporting progress in [0,1].
type VideoOptimizer interface {
	Transcode(ctx context.Context, job domain.VideoJob, progress func(fraction float64)) error
}

type MetadataWriter interface {
	RewriteMetadata(ctx context.Context, path string, patch domain.MetadataPatch) error
}

// InUseProbe reports the process holding path open, if any.
type InUseProbe interface {
	Holder(ctx context.Context, path string) (command string, pid int, inUse bool, err error)
}

type ZoneLookup interface {
	ZoneAt(coords domain.Coordinates) (*time.Location, bool)
}

type Prompter interface {
	Confirm(question string) (bool, error)
}

// Locker takes an exclusive hold on the destination libraries for one run.
type Locker interface {
	Lock(roots []string) (release func() error, err error)
}

// ProgressFunc receives transcode progress for the named file.
type ProgressFunc func(label string, fraction float64)
