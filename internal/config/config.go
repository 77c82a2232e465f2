package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"photein/internal/domain"
	appErrors "photein/internal/errors"
)

// Config holds one typed field per recognized option. It is built once at
// startup and passed down explicitly.
type Config struct {
	SourceDir      string
	LibraryMaster  string
	LibraryDesktop string
	LibraryWeb     string
	Recursive      bool
	Keep           bool
	Interactive    bool
	DryRun         bool
	Safe           bool
	Verbose        bool
	ShiftHours     int
	LocalTZName    string
	LocalTZ        *time.Location
	TZCoordinates  *domain.Coordinates
	LogFormat      string
	ConfigPath     string
}

// Destination is a configured library and the profile it is optimized for.
type Destination struct {
	Profile domain.Profile
	Root    string
}

// Destinations returns the configured libraries in master, desktop, web order.
func (c Config) Destinations() []Destination {
	var out []Destination
	for _, profile := range domain.Profiles {
		if root := c.Library(profile); root != "" {
			out = append(out, Destination{Profile: profile, Root: root})
		}
	}
	return out
}

func (c Config) Library(profile domain.Profile) string {
	switch profile {
	case domain.Master:
		return c.LibraryMaster
	case domain.Desktop:
		return c.LibraryDesktop
	case domain.Web:
		return c.LibraryWeb
	default:
		return ""
	}
}

// ShiftDuration is the configured shift as a duration.
func (c Config) ShiftDuration() time.Duration {
	return time.Duration(c.ShiftHours) * time.Hour
}

// Flags are the raw command-line values, bound by the CLI.
type Flags struct {
	Source         string
	LibraryMaster  string
	LibraryDesktop string
	LibraryWeb     string
	Recursive      bool
	Keep           bool
	Interactive    bool
	DryRun         bool
	Safe           bool
	Verbose        bool
	ShiftTimestamp string
	LocalTZ        string
	LogFormat      string
	ConfigPath     string
}

func BindFlags(fs *pflag.FlagSet, f *Flags) {
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "print verbose output")
	fs.StringVarP(&f.Source, "source", "s", "", "path to the source directory")
	fs.StringVarP(&f.LibraryMaster, "library-master", "m", "", "path to a destination directory (master)")
	fs.StringVarP(&f.LibraryDesktop, "library-desktop", "d", "", "path to a destination directory (desktop-optimized)")
	fs.StringVarP(&f.LibraryWeb, "library-web", "w", "", "path to a destination directory (web-optimized)")
	fs.BoolVarP(&f.Recursive, "recursive", "r", false, "ingest source files recursively")
	fs.BoolVarP(&f.Keep, "keep", "k", false, "do not delete source files")
	fs.BoolVarP(&f.Interactive, "interactive", "i", false, "ask whether to import each file found")
	fs.BoolVarP(&f.DryRun, "dry-run", "n", false, `perform a "no-op" trial run`)
	fs.StringVar(&f.ShiftTimestamp, "shift-timestamp", "", "adjust metadata timestamps by N hours")
	fs.StringVar(&f.LocalTZ, "local-tz", "", "backfill missing GPS metadata on videos (to name files in local time instead of UTC)")
	fs.BoolVar(&f.Safe, "safe", false, "skip files in use by other processes")
	fs.StringVar(&f.LogFormat, "log-format", "", "log output format (console or json)")
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "configuration file path")
}

// Load merges the optional config file, PHOTEIN_* environment variables and
// the flags that were set on the command line, then validates the result.
// changed reports whether a flag was given explicitly.
func Load(f Flags, changed func(name string) bool) (Config, error) {
	if changed == nil {
		changed = func(string) bool { return false }
	}

	file, err := loadFile(f.ConfigPath)
	if err != nil {
		return Config{}, appErrors.Wrap(appErrors.InvalidConfig, "config", f.ConfigPath, err)
	}

	cfg := Config{
		SourceDir:      file.Source,
		LibraryMaster:  file.Libraries.Master,
		LibraryDesktop: file.Libraries.Desktop,
		LibraryWeb:     file.Libraries.Web,
		Recursive:      file.Import.Recursive,
		Keep:           file.Import.Keep,
		Safe:           file.Import.Safe,
		Verbose:        file.Logging.Verbose,
		LogFormat:      file.Logging.Format,
		LocalTZName:    file.Import.LocalTZ,
		ConfigPath:     file.path,
	}
	shift := ""
	if file.Import.ShiftTimestamp != nil {
		shift = *file.Import.ShiftTimestamp
	}

	envString(&cfg.SourceDir, "PHOTEIN_SOURCE")
	envString(&cfg.LibraryMaster, "PHOTEIN_LIBRARY_MASTER")
	envString(&cfg.LibraryDesktop, "PHOTEIN_LIBRARY_DESKTOP")
	envString(&cfg.LibraryWeb, "PHOTEIN_LIBRARY_WEB")
	envString(&cfg.LocalTZName, "PHOTEIN_LOCAL_TZ")
	if !cfg.Verbose {
		cfg.Verbose = envTruthy("PHOTEIN_VERBOSE")
	}

	overrideString(&cfg.SourceDir, f.Source, changed("source"))
	overrideString(&cfg.LibraryMaster, f.LibraryMaster, changed("library-master"))
	overrideString(&cfg.LibraryDesktop, f.LibraryDesktop, changed("library-desktop"))
	overrideString(&cfg.LibraryWeb, f.LibraryWeb, changed("library-web"))
	overrideString(&cfg.LocalTZName, f.LocalTZ, changed("local-tz"))
	overrideString(&cfg.LogFormat, f.LogFormat, changed("log-format"))
	overrideString(&shift, f.ShiftTimestamp, changed("shift-timestamp"))
	cfg.Recursive = cfg.Recursive || f.Recursive
	cfg.Keep = cfg.Keep || f.Keep
	cfg.Safe = cfg.Safe || f.Safe
	cfg.Interactive = f.Interactive
	cfg.DryRun = f.DryRun
	cfg.Verbose = cfg.Verbose || f.Verbose || f.DryRun

	if err := cfg.validate(shift, changed("shift-timestamp") || file.Import.ShiftTimestamp != nil); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overrideString(dst *string, value string, set bool) {
	if set || strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

func envString(dst *string, key string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*dst = val
	}
}

func envTruthy(key string) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "y"
}

// ExpandPath resolves "~" and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("resolve home directory: " + err.Error())
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Abs(filepath.Clean(pathValue))
}
