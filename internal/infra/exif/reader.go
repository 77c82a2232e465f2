package exif

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"

	"photein/internal/domain"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// Fallback reads formats goexif cannot parse.
type Fallback interface {
	ReadMetadata(ctx context.Context, path string) (domain.Metadata, error)
}

// Reader extracts photo metadata with goexif. Location is used for EXIF
// timestamps, which carry no zone.
type Reader struct {
	Location *time.Location
	Fallback Fallback
}

func (r Reader) ReadMetadata(ctx context.Context, path string) (domain.Metadata, error) {
	select {
	case <-ctx.Done():
		return domain.Metadata{}, ctx.Err()
	default:
	}

	if strings.EqualFold(filepath.Ext(path), ".heic") && r.Fallback != nil {
		return r.Fallback.ReadMetadata(ctx, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer file.Close()

	var meta domain.Metadata
	if cfg, _, err := image.DecodeConfig(file); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return domain.Metadata{}, err
	}

	x, err := goexif.Decode(file)
	if err != nil {
		// no EXIF block
		return meta, nil
	}

	if ts, ok := r.takenAt(x); ok {
		meta.TakenAt = &ts
	}
	if lat, long, err := x.LatLong(); err == nil {
		meta.GPS = &domain.Coordinates{Latitude: lat, Longitude: long}
	}
	return meta, nil
}

func (r Reader) takenAt(x *goexif.Exif) (time.Time, bool) {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	for _, field := range []goexif.FieldName{goexif.DateTimeOriginal, goexif.DateTimeDigitized, goexif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		str, err := tag.StringVal()
		if err != nil {
			continue
		}
		parsed, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(str), loc)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
