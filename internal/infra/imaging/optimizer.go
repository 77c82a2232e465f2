// Package imaging downsizes photos for size-constrained libraries.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"photein/internal/deps"
	"photein/internal/domain"
)

// TagCopier restores metadata that the Go encoder drops.
type TagCopier interface {
	CopyTags(ctx context.Context, from, to string) error
}

type Optimizer struct {
	Tags TagCopier
}

// OptimizeImage writes job.Target. It declines (false) for JPEGs already within
// the pixel cap and for PNGs when optipng is not installed.
func (o Optimizer) OptimizeImage(ctx context.Context, job domain.ImageJob) (bool, error) {
	switch {
	case job.SourceExt == ".heic":
		return true, o.convertHEIC(ctx, job)
	case job.SourceExt == ".png":
		return o.compressPNG(ctx, job)
	case job.SourceExt == ".jpg":
		return o.resizeJPEG(ctx, job)
	default:
		return false, nil
	}
}

func (o Optimizer) resizeJPEG(ctx context.Context, job domain.ImageJob) (bool, error) {
	src, err := imaging.Open(job.Source)
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", job.Source, err)
	}
	bounds := src.Bounds()
	width, height, shrink := FitPixels(bounds.Dx(), bounds.Dy(), job.MaxPixels)
	if !shrink {
		return false, nil
	}

	resized := imaging.Resize(src, width, height, imaging.Lanczos)
	if err := imaging.Save(resized, job.Target, imaging.JPEGQuality(job.Quality)); err != nil {
		return false, fmt.Errorf("encode %s: %w", job.Target, err)
	}
	if o.Tags != nil {
		if err := o.Tags.CopyTags(ctx, job.Source, job.Target); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (o Optimizer) convertHEIC(ctx context.Context, job domain.ImageJob) error {
	bin, err := deps.Require("magick", "converting HEIC photos")
	if err != nil {
		return err
	}
	args := []string{
		job.Source,
		"-colorspace", "sRGB",
		"-define", "jpeg:dct-method=float",
		"-interlace", "JPEG",
		"-quality", strconv.Itoa(job.Quality),
		"-resize", fmt.Sprintf("%d@>", job.MaxPixels),
		"-sampling-factor", "4:2:0",
		job.Target,
	}
	return run(ctx, bin, args...)
}

func (o Optimizer) compressPNG(ctx context.Context, job domain.ImageJob) (bool, error) {
	if !deps.Available("optipng") {
		return false, nil
	}
	if err := copyFile(job.Source, job.Target); err != nil {
		return false, err
	}
	if err := run(ctx, "optipng", "-quiet", "-o4", job.Target); err != nil {
		os.Remove(job.Target)
		return false, err
	}
	return true, nil
}

// FitPixels scales width x height down to at most maxPixels, keeping the
// aspect ratio. shrink is false when the image already fits.
func FitPixels(width, height, maxPixels int) (w, h int, shrink bool) {
	if width <= 0 || height <= 0 || maxPixels <= 0 || width*height <= maxPixels {
		return width, height, false
	}
	scale := math.Sqrt(float64(maxPixels) / float64(width*height))
	w = int(math.Floor(float64(width) * scale))
	h = int(math.Floor(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, true
}

func run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
