// Package geo maps between GPS coordinates and IANA time zones.
package geo

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bradfitz/latlong"

	"photein/internal/domain"
)

// Lookup resolves the zone a coordinate lies in.
type Lookup struct{}

func (Lookup) ZoneAt(c domain.Coordinates) (*time.Location, bool) {
	name := latlong.LookupZoneName(c.Latitude, c.Longitude)
	if name == "" {
		return nil, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

var zoneTabDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
	"/etc/zoneinfo",
}

var (
	zoneTabOnce sync.Once
	zoneTab     map[string]domain.Coordinates
)

// ZoneCoordinates returns the principal location of a zone as listed in the
// system zone.tab files. available is false when no table could be read.
func ZoneCoordinates(name string) (coords domain.Coordinates, found bool, available bool) {
	zoneTabOnce.Do(func() {
		zoneTab = loadZoneTabs()
	})
	if zoneTab == nil {
		return domain.Coordinates{}, false, false
	}
	coords, found = zoneTab[name]
	return coords, found, true
}

func loadZoneTabs() map[string]domain.Coordinates {
	dirs := zoneTabDirs
	if env := os.Getenv("ZONEINFO"); env != "" {
		dirs = append([]string{env}, dirs...)
	}
	var merged map[string]domain.Coordinates
	for _, dir := range dirs {
		for _, name := range []string{"zone.tab", "zone1970.tab"} {
			file, err := os.Open(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			entries, err := ParseZoneTab(file)
			file.Close()
			if err != nil {
				continue
			}
			if merged == nil {
				merged = make(map[string]domain.Coordinates)
			}
			for zone, c := range entries {
				if _, ok := merged[zone]; !ok {
					merged[zone] = c
				}
			}
		}
		if merged != nil {
			return merged
		}
	}
	return nil
}

// ParseZoneTab reads a zone.tab or zone1970.tab file.
func ParseZoneTab(r io.Reader) (map[string]domain.Coordinates, error) {
	entries := make(map[string]domain.Coordinates)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		coords, err := ParseISO6709(fields[1])
		if err != nil {
			continue
		}
		entries[fields[2]] = coords
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var iso6709Pattern = regexp.MustCompile(`^([+-])(\d+(?:\.\d+)?)([+-])(\d+(?:\.\d+)?)`)

// ParseISO6709 parses coordinates such as "+6006+01957", "+404251-0740023"
// or the decimal "+39.6542+066.9597+123.000/" written by phones.
func ParseISO6709(value string) (domain.Coordinates, error) {
	m := iso6709Pattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return domain.Coordinates{}, fmt.Errorf("invalid ISO 6709 coordinates %q", value)
	}
	lat, err := sexagesimal(m[2], 2)
	if err != nil {
		return domain.Coordinates{}, err
	}
	lon, err := sexagesimal(m[4], 3)
	if err != nil {
		return domain.Coordinates{}, err
	}
	if m[1] == "-" {
		lat = -lat
	}
	if m[3] == "-" {
		lon = -lon
	}
	if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return domain.Coordinates{}, fmt.Errorf("coordinates out of range %q", value)
	}
	return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// sexagesimal decodes D[.d], DM[.m] or DMS[.s] digits where the degree part
// is degreeDigits wide.
func sexagesimal(value string, degreeDigits int) (float64, error) {
	intPart, frac, _ := strings.Cut(value, ".")
	if frac != "" {
		frac = "." + frac
	}
	switch len(intPart) {
	case degreeDigits:
		return strconv.ParseFloat(intPart+frac, 64)
	case degreeDigits + 2:
		deg, _ := strconv.Atoi(intPart[:degreeDigits])
		min, err := strconv.ParseFloat(intPart[degreeDigits:]+frac, 64)
		if err != nil {
			return 0, err
		}
		return float64(deg) + min/60, nil
	case degreeDigits + 4:
		deg, _ := strconv.Atoi(intPart[:degreeDigits])
		min, _ := strconv.Atoi(intPart[degreeDigits : degreeDigits+2])
		sec, err := strconv.ParseFloat(intPart[degreeDigits+2:]+frac, 64)
		if err != nil {
			return 0, err
		}
		return float64(deg) + float64(min)/60 + sec/3600, nil
	default:
		return 0, fmt.Errorf("invalid coordinate component %q", value)
	}
}
