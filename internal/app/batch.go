package app

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"

	"photein/internal/config"
	"photein/internal/domain"
	appErrors "photein/internal/errors"
	"photein/internal/logging"
)

// Batch imports every supported file under the source directory, one at a time.
type Batch struct {
	Config   config.Config
	FS       FileSystem
	Media    *MediaFactory
	Importer *Importer
	Locker   Locker
	Logger   logging.Logger
	// OnFile is called after each file completes.
	OnFile func(done, total int, result domain.FileResult)
}

// Discover lists supported files, photos before videos since transcoding is
// the slow part, each group in natural path order.
func (b *Batch) Discover() ([]domain.MediaFile, error) {
	stop := b.Logger.Measure("Scanning source directory")
	defer stop()

	root := b.Config.SourceDir
	var images, videos []domain.MediaFile
	err := b.FS.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && !b.Config.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		file, err := domain.NewMediaFile(path)
		if err != nil {
			return nil
		}
		if file.Kind == domain.Video {
			videos = append(videos, file)
		} else {
			images = append(images, file)
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "scan", root, err)
	}

	sortNatural(images)
	sortNatural(videos)
	files := append(images, videos...)
	if len(files) == 0 {
		return nil, appErrors.Wrap(appErrors.NotFound, "scan", root, errors.New("no photos or videos found"))
	}
	b.Logger.Verbosef("Found %d photos and %d videos in %s", len(images), len(videos), root)
	return files, nil
}

func sortNatural(files []domain.MediaFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return natural.Less(files[i].Path, files[j].Path)
	})
}

// Run locks the libraries and imports each discovered file. It stops early
// on a fatal error or when ctx is cancelled between files.
func (b *Batch) Run(ctx context.Context) (domain.Report, error) {
	var report domain.Report

	files, err := b.Discover()
	if err != nil {
		return report, err
	}

	if b.Locker != nil {
		roots := make([]string, 0, 3)
		for _, dest := range b.Config.Destinations() {
			roots = append(roots, filepath.Clean(dest.Root))
		}
		release, err := b.Locker.Lock(roots)
		if err != nil {
			return report, appErrors.Wrap(appErrors.InvalidConfig, "lock", "", err)
		}
		defer func() {
			if err := release(); err != nil {
				b.Logger.Warn("failed to release library lock", "error", err)
			}
		}()
	}

	stop := b.Logger.Measure("Importing")
	defer stop()

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := b.Importer.Import(ctx, b.Media.New(file))
		report.Add(result)
		if b.OnFile != nil {
			b.OnFile(i+1, len(files), result)
		}
		if err != nil {
			return report, err
		}
	}
	return report, nil
}
