package geo

import (
	"math"
	"strings"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestParseISO6709(t *testing.T) {
	cases := []struct {
		in       string
		lat, lon float64
	}{
		{"+6006+01957", 60.1, 19.95},
		{"+404251-0740023", 40 + 42.0/60 + 51.0/3600, -(74 + 0.0/60 + 23.0/3600)},
		{"+39.6542+066.9597+123.000/", 39.6542, 66.9597},
		{"-3352+15113", -(33 + 52.0/60), 151 + 13.0/60},
	}
	for _, tc := range cases {
		got, err := ParseISO6709(tc.in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.in, err)
		}
		if !near(got.Latitude, tc.lat) || !near(got.Longitude, tc.lon) {
			t.Fatalf("%s: got %+v", tc.in, got)
		}
	}
}

func TestParseISO6709Rejects(t *testing.T) {
	for _, in := range []string{"", "north", "+1+2", "+9500+01957"} {
		if _, err := ParseISO6709(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestParseZoneTab(t *testing.T) {
	tab := strings.Join([]string{
		"# tzdb timezone descriptions",
		"AX\t+6006+01957\tEurope/Mariehamn",
		"UZ\t+3940+06648\tAsia/Samarkand\tUzbekistan (west)",
		"broken line",
	}, "\n")

	entries, err := ParseZoneTab(strings.NewReader(tab))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	mariehamn := entries["Europe/Mariehamn"]
	if !near(mariehamn.Latitude, 60.1) || !near(mariehamn.Longitude, 19.95) {
		t.Fatalf("unexpected coordinates: %+v", mariehamn)
	}
}
