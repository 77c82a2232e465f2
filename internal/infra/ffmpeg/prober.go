package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"photein/internal/deps"
	"photein/internal/domain"
	"photein/internal/infra/geo"
)

// ProbeResult is the subset of `ffprobe -of json` output photein reads.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	CodecType string            `json:"codec_type"`
	BitRate   string            `json:"bit_rate"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Tags      map[string]string `json:"tags"`
}

type Format struct {
	Duration string            `json:"duration"`
	BitRate  string            `json:"bit_rate"`
	Tags     map[string]string `json:"tags"`
}

var locationTags = []string{
	"com.apple.quicktime.location.ISO6709",
	"location",
	"location-eng",
}

// Prober reads video metadata with ffprobe.
type Prober struct{}

func (Prober) ReadMetadata(ctx context.Context, path string) (domain.Metadata, error) {
	bin, err := deps.Require("ffprobe", "reading video metadata")
	if err != nil {
		return domain.Metadata{}, err
	}
	cmd := exec.CommandContext(ctx, bin, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// unreadable container; the missing bitrate marks it corrupted
			return domain.Metadata{}, nil
		}
		return domain.Metadata{}, fmt.Errorf("ffprobe: %w", err)
	}
	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return domain.Metadata{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result.Metadata(), nil
}

// Metadata converts the probe result. Container timestamps are UTC instants.
func (r ProbeResult) Metadata() domain.Metadata {
	var meta domain.Metadata
	if rate := r.BitRate(); rate > 0 {
		meta.Bitrate = &rate
	}
	if seconds := parseFloat(r.Format.Duration); seconds > 0 && !math.IsNaN(seconds) {
		meta.Duration = time.Duration(seconds * float64(time.Second))
	}
	if ts, ok := r.creationTime(); ok {
		meta.TakenAt = &ts
	}
	for _, key := range locationTags {
		if value := r.Format.Tags[key]; value != "" {
			if coords, err := geo.ParseISO6709(value); err == nil {
				meta.GPS = &coords
				break
			}
		}
	}
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			meta.Width, meta.Height = stream.Width, stream.Height
			break
		}
	}
	return meta
}

// BitRate returns the container bitrate, falling back to the sum of stream
// bitrates. Zero means unknown.
func (r ProbeResult) BitRate() int64 {
	if rate := parseFloat(r.Format.BitRate); rate > 0 && !math.IsNaN(rate) {
		return int64(rate)
	}
	var total int64
	for _, stream := range r.Streams {
		if rate := parseFloat(stream.BitRate); rate > 0 && !math.IsNaN(rate) {
			total += int64(rate)
		}
	}
	return total
}

func (r ProbeResult) creationTime() (time.Time, bool) {
	candidates := []string{
		r.Format.Tags["com.apple.quicktime.creationdate"],
		r.Format.Tags["creation_time"],
	}
	for _, stream := range r.Streams {
		candidates = append(candidates, stream.Tags["creation_time"])
	}
	for _, value := range candidates {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			ts, err = time.Parse("2006-01-02T15:04:05-0700", value)
		}
		if err != nil || ts.Year() <= 1970 {
			// muxers write the epoch when the clock was unset
			continue
		}
		return ts.UTC(), true
	}
	return time.Time{}, false
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
