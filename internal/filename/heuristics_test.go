package filename

import (
	"regexp"
	"testing"
	"time"
)

func TestImageTimestampConventions(t *testing.T) {
	cases := []struct {
		name       string
		want       time.Time
		convention string
	}{
		{"IMG_20200214_225530", time.Date(2020, 2, 14, 22, 55, 30, 0, time.UTC), "android"},
		{"IMG_20200214_225530_123", time.Date(2020, 2, 14, 22, 55, 30, 0, time.UTC), "android"},
		{"1619568008123", time.Date(2021, 4, 28, 0, 0, 8, 0, time.UTC), "line"},
		{"IMG-20210428-WA0008", time.Date(2021, 4, 28, 0, 0, 8, 0, time.UTC), "whatsapp"},
		{"IMG-20210428-WA0112", time.Date(2021, 4, 28, 0, 1, 12, 0, time.UTC), "whatsapp"},
		{"signal-2021-04-28-000008", time.Date(2021, 4, 28, 0, 0, 8, 0, time.UTC), "signal"},
		{"signal-2021-04-28-000008 (2)", time.Date(2021, 4, 28, 0, 0, 8, 0, time.UTC), "signal"},
		{"2019-07-07 10:50:18", time.Date(2019, 7, 7, 10, 50, 18, 0, time.UTC), "generic"},
		{"20200214_225530", time.Date(2020, 2, 14, 22, 55, 30, 0, time.UTC), "generic"},
		{"2020-02-14 22.55.30", time.Date(2020, 2, 14, 22, 55, 30, 0, time.UTC), "generic"},
		{"2020-02-14 holiday", time.Date(2020, 2, 14, 0, 0, 0, 0, time.UTC), "generic"},
	}

	for _, tc := range cases {
		got, convention, ok := ImageTimestamp(tc.name, time.UTC)
		if !ok {
			t.Fatalf("%s: expected a match", tc.name)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if convention != tc.convention {
			t.Fatalf("%s: expected convention %q, got %q", tc.name, tc.convention, convention)
		}
	}
}

func TestVideoTimestampConventions(t *testing.T) {
	cases := []struct {
		name string
		want time.Time
	}{
		{"LINE_MOVIE_1619568007123", time.Date(2021, 4, 28, 0, 0, 7, 0, time.UTC)},
		{"VID-20210428-WA0007", time.Date(2021, 4, 28, 0, 0, 7, 0, time.UTC)},
		{"VID_20210428_000007_250", time.Date(2021, 4, 28, 0, 0, 7, 250*int(time.Millisecond), time.UTC)},
		{"VID_20210312_104032", time.Date(2021, 3, 12, 10, 40, 32, 0, time.UTC)},
		{"signal-2021-04-28-000007", time.Date(2021, 4, 28, 0, 0, 7, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, _, ok := VideoTimestamp(tc.name, time.UTC)
		if !ok {
			t.Fatalf("%s: expected a match", tc.name)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestWallClockReadInGivenZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	got, _, ok := ImageTimestamp("IMG_20200214_225530", tokyo)
	if !ok {
		t.Fatalf("expected a match")
	}
	if got.Hour() != 22 || got.Location() != tokyo {
		t.Fatalf("expected 22h wall clock in JST, got %v", got)
	}
	if !got.Equal(time.Date(2020, 2, 14, 13, 55, 30, 0, time.UTC)) {
		t.Fatalf("unexpected instant: %v", got.UTC())
	}
}

func TestNoMatch(t *testing.T) {
	for _, name := range []string{"DSC0001", "holiday", "IMG-20210428-WA0075", "IMG_20201399_225530", "img_20200214_225530"} {
		if ts, convention, ok := ImageTimestamp(name, time.UTC); ok {
			t.Fatalf("%s: expected no match, got %v via %s", name, ts, convention)
		}
	}
}

func TestFailedParseTriesLaterConventions(t *testing.T) {
	conventions := []Convention{
		{Name: "never", Pattern: regexp.MustCompile(`^\d+`), parse: func([]string, *time.Location) (time.Time, bool) { return time.Time{}, false }},
		generic,
	}
	got, convention, ok := match(conventions, "20200214_225530", time.UTC)
	if !ok || convention != "generic" {
		t.Fatalf("expected the generic convention after a failed parse, got %q (%v)", convention, ok)
	}
	if !got.Equal(time.Date(2020, 2, 14, 22, 55, 30, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestTokensAreCaseSensitive(t *testing.T) {
	if _, _, ok := VideoTimestamp("line_movie_1619568007123", time.UTC); ok {
		t.Fatalf("expected lower-case LINE prefix to be rejected")
	}
	if _, _, ok := VideoTimestamp("Signal-2021-04-28-000007", time.UTC); ok {
		t.Fatalf("expected capitalised signal prefix to be rejected")
	}
}
