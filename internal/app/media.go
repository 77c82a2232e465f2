package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"photein/internal/config"
	"photein/internal/domain"
	"photein/internal/filename"
)

// Media is the per-kind behaviour the importer is written against.
type Media interface {
	File() domain.MediaFile
	// Metadata reads embedded metadata once and caches the result.
	Metadata(ctx context.Context) (domain.Metadata, error)
	FilenameTimestamp(loc *time.Location) (time.Time, string, bool)
	Corrupted(ctx context.Context) (bool, error)
	Eligible(profile domain.Profile) bool
	TargetExt(profile domain.Profile) string
	// Optimize writes an optimized copy to target and reports whether it did.
	// With dryRun set it only reports whether it would.
	Optimize(ctx context.Context, profile domain.Profile, target string, dryRun bool) (bool, error)
	MetadataPatch(ts domain.CaptureTimestamp) domain.MetadataPatch
}

// MediaFactory builds the Media variant for a discovered file.
type MediaFactory struct {
	Config         config.Config
	FS             FileSystem
	ImageReader    MetadataReader
	VideoReader    MetadataReader
	ImageOptimizer ImageOptimizer
	VideoOptimizer VideoOptimizer
	Progress       ProgressFunc
}

func (f *MediaFactory) New(file domain.MediaFile) Media {
	if file.Kind == domain.Video {
		return &VideoMedia{
			mediaBase:  mediaBase{file: file, reader: f.VideoReader, cfg: f.Config},
			transcoder: f.VideoOptimizer,
			progress:   f.Progress,
		}
	}
	return &ImageMedia{
		mediaBase: mediaBase{file: file, reader: f.ImageReader, cfg: f.Config},
		fs:        f.FS,
		optimizer: f.ImageOptimizer,
	}
}

type mediaBase struct {
	file   domain.MediaFile
	reader MetadataReader
	cfg    config.Config

	once sync.Once
	meta domain.Metadata
	err  error
}

func (b *mediaBase) File() domain.MediaFile {
	return b.file
}

func (b *mediaBase) Metadata(ctx context.Context) (domain.Metadata, error) {
	b.once.Do(func() {
		if b.reader == nil {
			return
		}
		b.meta, b.err = b.reader.ReadMetadata(ctx, b.file.Path)
	})
	return b.meta, b.err
}

var imageFormatMap = map[domain.Profile]map[string]string{
	domain.Web: {".heic": ".jpg"},
}

type ImageMedia struct {
	mediaBase
	fs        FileSystem
	optimizer ImageOptimizer
}

func (m *ImageMedia) FilenameTimestamp(loc *time.Location) (time.Time, string, bool) {
	return filename.ImageTimestamp(m.file.BaseName(), loc)
}

// Corrupted treats empty files as unreadable; decoders handle the rest.
func (m *ImageMedia) Corrupted(ctx context.Context) (bool, error) {
	info, err := m.fs.Stat(m.file.Path)
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}

// Eligible keeps raw files out of the web library.
func (m *ImageMedia) Eligible(profile domain.Profile) bool {
	return !(profile == domain.Web && m.file.Ext == ".dng")
}

func (m *ImageMedia) TargetExt(profile domain.Profile) string {
	if mapped, ok := imageFormatMap[profile][m.file.Ext]; ok {
		return mapped
	}
	return m.file.Ext
}

func (m *ImageMedia) Optimize(ctx context.Context, profile domain.Profile, target string, dryRun bool) (bool, error) {
	if profile != domain.Web {
		return false, nil
	}
	switch m.file.Ext {
	case ".jpg":
		meta, _ := m.Metadata(ctx)
		if meta.Width > 0 && meta.Height > 0 && meta.Width*meta.Height <= domain.MaxWebPixels {
			return false, nil
		}
	case ".heic", ".png":
	default:
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	if m.optimizer == nil {
		return false, nil
	}
	return m.optimizer.OptimizeImage(ctx, domain.ImageJob{
		Source:    m.file.Path,
		Target:    target,
		SourceExt: m.file.Ext,
		TargetExt: m.TargetExt(profile),
		MaxPixels: domain.MaxWebPixels,
		Quality:   domain.WebJPEGQuality,
	})
}

// MetadataPatch shifts the EXIF dates and records the configured zone offset.
func (m *ImageMedia) MetadataPatch(ts domain.CaptureTimestamp) domain.MetadataPatch {
	var patch domain.MetadataPatch
	if ts.Shift != 0 {
		local := ts.Local()
		patch.AllDates = &local
	}
	if m.cfg.LocalTZ != nil {
		// the camera clock is read as wall time in the configured zone
		local := ts.Local()
		wall := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, m.cfg.LocalTZ)
		patch.Offset = wall.Format("-07:00")
	}
	return patch
}

var videoFormatMap = map[domain.Profile]map[string]string{
	domain.Desktop: {".mov": ".mp4"},
	domain.Web:     {".mov": ".mp4"},
}

type VideoMedia struct {
	mediaBase
	transcoder VideoOptimizer
	progress   ProgressFunc
}

func (m *VideoMedia) FilenameTimestamp(loc *time.Location) (time.Time, string, bool) {
	return filename.VideoTimestamp(m.file.BaseName(), loc)
}

// Corrupted reports videos whose container has no readable bitrate.
func (m *VideoMedia) Corrupted(ctx context.Context) (bool, error) {
	meta, err := m.Metadata(ctx)
	if err != nil {
		return false, err
	}
	return meta.Bitrate == nil, nil
}

func (m *VideoMedia) Eligible(domain.Profile) bool {
	return true
}

func (m *VideoMedia) TargetExt(profile domain.Profile) string {
	if mapped, ok := videoFormatMap[profile][m.file.Ext]; ok {
		return mapped
	}
	return m.file.Ext
}

func (m *VideoMedia) Optimize(ctx context.Context, profile domain.Profile, target string, dryRun bool) (bool, error) {
	threshold, ok := domain.VideoBitrateThreshold[profile]
	if !ok {
		return false, nil
	}
	meta, err := m.Metadata(ctx)
	if err != nil {
		return false, err
	}
	if meta.Bitrate == nil || *meta.Bitrate < threshold {
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	if m.transcoder == nil {
		return false, nil
	}

	var progress func(float64)
	if m.progress != nil {
		label := fmt.Sprintf("%s (%s)", m.file.Name, profile)
		progress = func(fraction float64) { m.progress(label, fraction) }
	}
	err = m.transcoder.Transcode(ctx, domain.VideoJob{
		Source:   m.file.Path,
		Target:   target,
		CRF:      domain.VideoCRF[profile],
		Duration: meta.Duration,
	}, progress)
	if err != nil {
		return false, err
	}
	return true, nil
}

// MetadataPatch shifts container dates, which are stored in UTC, and
// backfills the --local-tz location on videos recorded without GPS.
func (m *VideoMedia) MetadataPatch(ts domain.CaptureTimestamp) domain.MetadataPatch {
	var patch domain.MetadataPatch
	if ts.Shift != 0 {
		utc := ts.Time.UTC()
		patch.AllDates = &utc
	}
	if m.cfg.TZCoordinates != nil {
		meta, _ := m.Metadata(context.Background())
		if meta.GPS == nil {
			coords := *m.cfg.TZCoordinates
			patch.GPS = &coords
		}
	}
	return patch
}
