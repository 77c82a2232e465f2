package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	appErrors "photein/internal/errors"
	"photein/internal/infra/geo"
)

var shiftPattern = regexp.MustCompile(`^-?\d+$`)

func (c *Config) validate(shift string, shiftGiven bool) error {
	if shiftGiven {
		if !shiftPattern.MatchString(shift) {
			return invalid("invalid --shift-timestamp option (must be integer)")
		}
		hours, err := strconv.Atoi(shift)
		if err != nil {
			return invalid("invalid --shift-timestamp option (must be integer)")
		}
		c.ShiftHours = hours
	}

	if c.LocalTZName != "" {
		if err := c.validateLocalTZ(); err != nil {
			return err
		}
	}

	if c.SourceDir == "" {
		return invalid("no source directory given")
	}
	if len(c.Destinations()) == 0 {
		return invalid("no destination directory given")
	}

	if err := c.normalizePaths(); err != nil {
		return err
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "console", "text", "json":
	default:
		return invalid(fmt.Sprintf("invalid --log-format option %q (must be console or json)", c.LogFormat))
	}

	info, err := os.Stat(c.SourceDir)
	if err != nil || !info.IsDir() {
		return appErrors.Wrap(appErrors.NotFound, "stat", c.SourceDir, errors.New("no such directory"))
	}
	return nil
}

func (c *Config) validateLocalTZ() error {
	name := c.LocalTZName
	if name == "Local" || strings.ContainsAny(name, " \\") {
		return invalid("invalid --local-tz option (must be from IANA tz database)")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return invalid("invalid --local-tz option (must be from IANA tz database)")
	}
	c.LocalTZ = loc

	coords, found, available := geo.ZoneCoordinates(name)
	if !available {
		return nil
	}
	if !found {
		return invalid("invalid --local-tz option (must reference a location)")
	}
	c.TZCoordinates = &coords
	return nil
}

func (c *Config) normalizePaths() error {
	seen := map[string]string{}
	for _, field := range []*string{&c.SourceDir, &c.LibraryMaster, &c.LibraryDesktop, &c.LibraryWeb} {
		if *field == "" {
			continue
		}
		expanded, err := ExpandPath(*field)
		if err != nil {
			return invalid(err.Error())
		}
		*field = expanded
	}
	for _, dest := range c.Destinations() {
		if other, dup := seen[dest.Root]; dup {
			return invalid(fmt.Sprintf("libraries %s and %s share the directory %s", other, dest.Profile, dest.Root))
		}
		seen[dest.Root] = string(dest.Profile)
		if dest.Root == c.SourceDir {
			return invalid(fmt.Sprintf("library %s must differ from the source directory", dest.Profile))
		}
		if c.Recursive && within(dest.Root, c.SourceDir) {
			return invalid(fmt.Sprintf("library %s must not be inside the source directory when importing recursively", dest.Profile))
		}
	}
	return nil
}

// within reports whether path lies below dir. Both are cleaned absolute paths.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func invalid(msg string) error {
	return appErrors.Wrap(appErrors.InvalidConfig, "config", "", errors.New(msg))
}
