package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"photein/internal/deps"
	"photein/internal/domain"
)

// Transcoder re-encodes videos with ffmpeg, keeping container metadata.
type Transcoder struct{}

func (Transcoder) Transcode(ctx context.Context, job domain.VideoJob, progress func(float64)) error {
	bin, err := deps.Require("ffmpeg", "transcoding video")
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bin, Args(job)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	finished := readProgress(stdout, job.Duration, progress)
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(lastLine(stderr.String())))
	}
	if progress != nil && !finished {
		progress(1)
	}
	return nil
}

// Args builds the ffmpeg command line for job.
func Args(job domain.VideoJob) []string {
	crf := strconv.Itoa(job.CRF)
	args := []string{
		"-nostdin", "-hide_banner", "-v", "error", "-y",
		"-i", job.Source,
		"-map_metadata", "0",
		"-movflags", "use_metadata_tags",
	}
	if strings.EqualFold(filepath.Ext(job.Target), ".webm") {
		args = append(args, "-c:v", "libvpx-vp9", "-b:v", "0", "-crf", crf)
	} else {
		args = append(args, "-c:v", "libx264", "-crf", crf)
	}
	return append(args, "-progress", "pipe:1", job.Target)
}

// readProgress forwards encoded fractions and reports whether 1 was reached.
func readProgress(r io.Reader, total time.Duration, progress func(float64)) bool {
	finished := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if progress == nil || total <= 0 {
			continue
		}
		if done, ok := ParseProgressLine(scanner.Text()); ok {
			fraction := float64(done) / float64(total)
			if fraction >= 1 {
				if finished {
					continue
				}
				fraction = 1
				finished = true
			}
			progress(fraction)
		}
	}
	return finished
}

// ParseProgressLine reads the encoded position from one `-progress` line.
func ParseProgressLine(line string) (time.Duration, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return 0, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// ffmpeg reports microseconds under both keys
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return time.Duration(us) * time.Microsecond, true
	default:
		return 0, false
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
