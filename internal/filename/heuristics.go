// Package filename guesses capture times from the file names that phones and
// chat apps give to photos and videos.
package filename

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// Convention is one known producer naming scheme.
type Convention struct {
	Name    string
	Pattern *regexp.Regexp
	parse   func(match []string, loc *time.Location) (time.Time, bool)
}

var (
	androidImage = Convention{
		Name:    "android",
		Pattern: regexp.MustCompile(`^IMG_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})(?:_\d{3})?$`),
		parse:   parseDateTime,
	}
	androidVideo = Convention{
		Name:    "android",
		Pattern: regexp.MustCompile(`^VID_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})$`),
		parse:   parseDateTime,
	}
	epochMillis = Convention{
		Name:    "line",
		Pattern: regexp.MustCompile(`^(\d{10})\d{3}$`),
		parse:   parseEpoch,
	}
	lineMovie = Convention{
		Name:    "line",
		Pattern: regexp.MustCompile(`^LINE_MOVIE_(\d{10})\d{3}$`),
		parse:   parseEpoch,
	}
	// WhatsApp only encodes the receipt date. The 4-digit counter is read as
	// minute and second so that files from one day keep their order.
	whatsappImage = Convention{
		Name:    "whatsapp",
		Pattern: regexp.MustCompile(`^IMG-(\d{4})(\d{2})(\d{2})-WA(\d{2})(\d{2})$`),
		parse:   parseWhatsApp,
	}
	whatsappVideo = Convention{
		Name:    "whatsapp",
		Pattern: regexp.MustCompile(`^VID-(\d{4})(\d{2})(\d{2})-WA(\d{2})(\d{2})$`),
		parse:   parseWhatsApp,
	}
	telegramImage = Convention{
		Name:    "telegram",
		Pattern: regexp.MustCompile(`^IMG_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})_(\d{3})$`),
		parse:   parseDateTime,
	}
	telegramVideo = Convention{
		Name:    "telegram",
		Pattern: regexp.MustCompile(`^VID_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})_(\d{3})$`),
		parse:   parseDateTime,
	}
	signal = Convention{
		Name:    "signal",
		Pattern: regexp.MustCompile(`^signal-(\d{4})-(\d{2})-(\d{2})-(\d{2})(\d{2})(\d{2})(?: \(\d+\))?$`),
		parse:   parseDateTime,
	}
	// ISO-like names start with the year.
	generic = Convention{
		Name:    "generic",
		Pattern: regexp.MustCompile(`^\d.+$`),
		parse:   parseGeneric,
	}
)

// ImageConventions is evaluated in order; the first match wins. The Telegram
// entry is shadowed by the Android one and only differs in sub-second precision.
var ImageConventions = []Convention{androidImage, epochMillis, whatsappImage, telegramImage, signal, generic}

var VideoConventions = []Convention{lineMovie, androidVideo, whatsappVideo, telegramVideo, signal, generic}

// ImageTimestamp guesses the capture time of a photo from its base name
// (extension stripped). Wall-clock values are read in loc.
func ImageTimestamp(base string, loc *time.Location) (time.Time, string, bool) {
	return match(ImageConventions, base, loc)
}

func VideoTimestamp(base string, loc *time.Location) (time.Time, string, bool) {
	return match(VideoConventions, base, loc)
}

func match(conventions []Convention, base string, loc *time.Location) (time.Time, string, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, convention := range conventions {
		m := convention.Pattern.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		if ts, ok := convention.parse(m, loc); ok {
			return ts, convention.Name, true
		}
	}
	return time.Time{}, "", false
}

func parseDateTime(m []string, loc *time.Location) (time.Time, bool) {
	fields := atoiAll(m[1:])
	millis := 0
	if len(fields) > 6 {
		millis = fields[6]
	}
	return civil(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], millis, loc)
}

func parseWhatsApp(m []string, loc *time.Location) (time.Time, bool) {
	f := atoiAll(m[1:])
	return civil(f[0], f[1], f[2], 0, f[3], f[4], 0, loc)
}

func parseEpoch(m []string, loc *time.Location) (time.Time, bool) {
	seconds, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(seconds, 0).In(loc), true
}

// dateToken is a leading date with an optional time, separated by dashes,
// underscores, spaces, dots or colons, e.g. 20200214_225530 or 2020-02-14 22.55.30.
var dateToken = regexp.MustCompile(`^(\d{4})-?(\d{2})-?(\d{2})(?:[ _T-]?(\d{2})[.:-]?(\d{2})[.:-]?(\d{2}))?`)

func parseGeneric(m []string, loc *time.Location) (time.Time, bool) {
	if tok := dateToken.FindStringSubmatch(m[0]); tok != nil {
		f := make([]int, 6)
		for i, v := range tok[1:] {
			f[i], _ = strconv.Atoi(v)
		}
		if ts, ok := civil(f[0], f[1], f[2], f[3], f[4], f[5], 0, loc); ok {
			return ts, true
		}
	}
	ts, err := dateparse.ParseIn(m[0], loc)
	if err != nil || ts.Year() < 1900 {
		return time.Time{}, false
	}
	return ts, true
}

// civil builds a wall-clock time and rejects values that time.Date would normalize.
func civil(year, month, day, hour, minute, second, millis int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	ts := time.Date(year, time.Month(month), day, hour, minute, second, millis*int(time.Millisecond), loc)
	if ts.Day() != day || int(ts.Month()) != month {
		return time.Time{}, false
	}
	return ts, true
}

func atoiAll(values []string) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		n, _ := strconv.Atoi(v)
		out = append(out, n)
	}
	return out
}
