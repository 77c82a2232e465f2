// Package exiftool shells out to exiftool for tags the Go decoders cannot
// read or write.
package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"photein/internal/deps"
	"photein/internal/domain"
)

const binary = "exiftool"

const tagTimeLayout = "2006:01:02 15:04:05"

// Tool runs exiftool. Location is used for timestamps without an offset.
type Tool struct {
	Location *time.Location
}

// RewriteMetadata applies patch to path in place.
func (t Tool) RewriteMetadata(ctx context.Context, path string, patch domain.MetadataPatch) error {
	if patch.Empty() {
		return nil
	}
	return t.run(ctx, "rewriting metadata", append(PatchArgs(patch), "--", path)...)
}

// CopyTags copies every writable tag from one file onto another.
func (t Tool) CopyTags(ctx context.Context, from, to string) error {
	return t.run(ctx, "copying metadata", "-TagsFromFile", from, "-all:all", "-unsafe", "--", to)
}

// PatchArgs renders patch as exiftool assignments.
func PatchArgs(patch domain.MetadataPatch) []string {
	var args []string
	if patch.AllDates != nil {
		args = append(args, "-AllDates="+patch.AllDates.Format(tagTimeLayout))
	}
	if patch.Offset != "" {
		for _, tag := range []string{"OffsetTime", "OffsetTimeOriginal", "OffsetTimeDigitized"} {
			args = append(args, fmt.Sprintf("-%s=%s", tag, patch.Offset))
		}
	}
	if patch.GPS != nil {
		args = append(args,
			fmt.Sprintf("-xmp:GPSLatitude=%f", patch.GPS.Latitude),
			fmt.Sprintf("-xmp:GPSLongitude=%f", patch.GPS.Longitude),
		)
	}
	return args
}

func (t Tool) run(ctx context.Context, capability string, args ...string) error {
	bin, err := deps.Require(binary, capability)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, bin, append([]string{"-overwrite_original", "-q"}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("exiftool: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ReadMetadata reads capture time, GPS and dimensions as numbers.
func (t Tool) ReadMetadata(ctx context.Context, path string) (domain.Metadata, error) {
	bin, err := deps.Require(binary, "reading image metadata")
	if err != nil {
		return domain.Metadata{}, err
	}
	cmd := exec.CommandContext(ctx, bin, "-json", "-n",
		"-DateTimeOriginal", "-CreateDate",
		"-GPSLatitude", "-GPSLongitude", "-ImageWidth", "-ImageHeight",
		"--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return domain.Metadata{}, nil
		}
		return domain.Metadata{}, fmt.Errorf("exiftool: %w", err)
	}
	return ParseJSON(output, t.location())
}

func (t Tool) location() *time.Location {
	if t.Location != nil {
		return t.Location
	}
	return time.Local
}

type record struct {
	DateTimeOriginal string   `json:"DateTimeOriginal"`
	CreateDate       string   `json:"CreateDate"`
	GPSLatitude      *float64 `json:"GPSLatitude"`
	GPSLongitude     *float64 `json:"GPSLongitude"`
	ImageWidth       int      `json:"ImageWidth"`
	ImageHeight      int      `json:"ImageHeight"`
}

// ParseJSON decodes `exiftool -json -n` output for a single file.
func ParseJSON(data []byte, loc *time.Location) (domain.Metadata, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return domain.Metadata{}, fmt.Errorf("exiftool parse: %w", err)
	}
	if len(records) == 0 {
		return domain.Metadata{}, nil
	}
	rec := records[0]

	meta := domain.Metadata{Width: rec.ImageWidth, Height: rec.ImageHeight}
	for _, value := range []string{rec.DateTimeOriginal, rec.CreateDate} {
		if ts, ok := parseTagTime(value, loc); ok {
			meta.TakenAt = &ts
			break
		}
	}
	if rec.GPSLatitude != nil && rec.GPSLongitude != nil {
		meta.GPS = &domain.Coordinates{Latitude: *rec.GPSLatitude, Longitude: *rec.GPSLongitude}
	}
	return meta, nil
}

// parseTagTime reads the camera's clock time in loc, ignoring any offset
// suffix, so names match photos read through goexif.
func parseTagTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "0000") {
		return time.Time{}, false
	}
	if len(value) > len(tagTimeLayout) {
		value = value[:len(tagTimeLayout)]
	}
	ts, err := time.ParseInLocation(tagTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
