package deps

import (
	"fmt"
	"os/exec"
	"strings"

	appErrors "photein/internal/errors"
)

// Requirement defines an external tool photein shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Hint        string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists every tool the importer may invoke.
var Requirements = []Requirement{
	{Name: "ExifTool", Command: "exiftool", Description: "Reads HEIC metadata and rewrites shifted timestamps", Hint: "install exiftool (libimage-exiftool-perl)"},
	{Name: "FFprobe", Command: "ffprobe", Description: "Reads video timestamps and bitrates", Hint: "install ffmpeg"},
	{Name: "FFmpeg", Command: "ffmpeg", Description: "Transcodes videos for desktop and web libraries", Hint: "install ffmpeg"},
	{Name: "ImageMagick", Command: "magick", Description: "Converts HEIC photos for the web library", Hint: "install imagemagick 7 with libheif"},
	{Name: "OptiPNG", Command: "optipng", Description: "Compresses PNG files for the web library", Optional: true},
	{Name: "lsof", Command: "lsof", Description: "Detects files held open by other processes (--safe)", Hint: "install lsof"},
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Require resolves binary on PATH. A missing binary yields a DependencyMissing
// error naming capability.
func Require(binary, capability string) (string, error) {
	path, err := exec.LookPath(binary)
	if err == nil {
		return path, nil
	}
	return "", appErrors.Missing(capability, binary, hintFor(binary))
}

// Available reports whether binary is on PATH.
func Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

func hintFor(binary string) string {
	for _, req := range Requirements {
		if req.Command == binary {
			return req.Hint
		}
	}
	return ""
}
