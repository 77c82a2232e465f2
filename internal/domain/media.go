package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type MediaKind int

const (
	Image MediaKind = iota
	Video
)

func (k MediaKind) String() string {
	if k == Video {
		return "video"
	}
	return "image"
}

var (
	ImageFormats = []string{".jpg", ".jpeg", ".dng", ".heic", ".png"}
	VideoFormats = []string{".mov", ".mp4", ".webm"}
)

var normalExtMap = map[string]string{
	".jpeg": ".jpg",
}

// MediaFile is a discovered source file.
type MediaFile struct {
	Path string
	Name string
	Kind MediaKind
	Ext  string
}

func NewMediaFile(path string) (MediaFile, error) {
	kind, ok := KindForExt(filepath.Ext(path))
	if !ok {
		return MediaFile{}, fmt.Errorf("%s: invalid media file", path)
	}
	return MediaFile{
		Path: path,
		Name: filepath.Base(path),
		Kind: kind,
		Ext:  NormalizeExt(filepath.Ext(path)),
	}, nil
}

// BaseName returns the file name without its extension.
func (f MediaFile) BaseName() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

func NormalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if mapped, ok := normalExtMap[ext]; ok {
		return mapped
	}
	return ext
}

func KindForExt(ext string) (MediaKind, bool) {
	ext = strings.ToLower(ext)
	if IsImageExtension(ext) {
		return Image, true
	}
	if IsVideoExtension(ext) {
		return Video, true
	}
	return Image, false
}

func IsImageExtension(ext string) bool {
	return contains(ImageFormats, strings.ToLower(ext))
}

func IsVideoExtension(ext string) bool {
	return contains(VideoFormats, strings.ToLower(ext))
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Metadata is what a metadata reader could extract from a file. Nil fields
// were not present.
type Metadata struct {
	TakenAt  *time.Time
	GPS      *Coordinates
	Bitrate  *int64
	Duration time.Duration
	Width    int
	Height   int
}
