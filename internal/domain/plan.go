package domain

import (
	"strings"
	"time"
)

// Profile names a destination library and the optimization policy applied to it.
type Profile string

const (
	Master  Profile = "master"
	Desktop Profile = "desktop"
	Web     Profile = "web"
)

// Profiles lists every profile in planning order.
var Profiles = []Profile{Master, Desktop, Web}

type TimestampSource string

const (
	SourceMetadata   TimestampSource = "metadata"
	SourceFilename   TimestampSource = "filename"
	SourceFilesystem TimestampSource = "filesystem"
)

const StampLayout = "2006-01-02_150405"

// CaptureTimestamp is the resolved capture time of a file. Time already
// carries the configured shift; Zone is the location used for naming.
type CaptureTimestamp struct {
	Time   time.Time
	Source TimestampSource
	Zone   *time.Location
	Shift  time.Duration
}

func (c CaptureTimestamp) Local() time.Time {
	if c.Zone == nil {
		return c.Time
	}
	return c.Time.In(c.Zone)
}

// Stamp is the destination base name, e.g. 2020-02-14_225530.
func (c CaptureTimestamp) Stamp() string {
	return c.Local().Format(StampLayout)
}

func (c CaptureTimestamp) Year() string {
	return c.Local().Format("2006")
}

type DestinationPlan struct {
	Profile     Profile
	Root        string
	Eligible    bool
	Ext         string
	DesiredPath string
	FinalPath   string
	Optimize    bool
}

type FileStatus string

const (
	StatusImported   FileStatus = "imported"
	StatusCorrupted  FileStatus = "corrupted"
	StatusDenied     FileStatus = "denied"
	StatusInUse      FileStatus = "in_use"
	StatusIneligible FileStatus = "ineligible"
	StatusFailed     FileStatus = "failed"
)

func (s FileStatus) Skipped() bool {
	switch s {
	case StatusCorrupted, StatusDenied, StatusInUse, StatusIneligible:
		return true
	default:
		return false
	}
}

type DestinationResult struct {
	Profile   Profile
	Path      string
	Optimized bool
	Bytes     int64
}

type FileResult struct {
	File          MediaFile
	Status        FileStatus
	Timestamp     CaptureTimestamp
	Destinations  []DestinationResult
	SourceRemoved bool
	Err           error
}

// Report collects the per-file outcomes of one batch.
type Report struct {
	Results  []FileResult
	Imported int
	Skipped  int
	Failed   int
	Warnings []string
}

func (r *Report) Add(result FileResult) {
	r.Results = append(r.Results, result)
	switch {
	case result.Status == StatusImported:
		r.Imported++
	case result.Status.Skipped():
		r.Skipped++
	default:
		r.Failed++
	}
}

func (r Report) BytesByProfile() map[Profile]int64 {
	totals := make(map[Profile]int64)
	for _, result := range r.Results {
		for _, dest := range result.Destinations {
			totals[dest.Profile] += dest.Bytes
		}
	}
	return totals
}

func (r Report) CountByProfile() map[Profile]int {
	counts := make(map[Profile]int)
	for _, result := range r.Results {
		for _, dest := range result.Destinations {
			counts[dest.Profile]++
		}
	}
	return counts
}

func ParseProfile(value string) (Profile, bool) {
	switch Profile(strings.ToLower(strings.TrimSpace(value))) {
	case Master:
		return Master, true
	case Desktop:
		return Desktop, true
	case Web:
		return Web, true
	default:
		return "", false
	}
}
