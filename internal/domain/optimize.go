package domain

import "time"

// Web profile limits.
const (
	MaxWebPixels   = 2097152
	WebJPEGQuality = 85
)

// VideoBitrateThreshold is the source bitrate (bits/s) above which a profile
// transcodes. Profiles without an entry never transcode.
var VideoBitrateThreshold = map[Profile]int64{
	Desktop: 8388608,
	Web:     2097152,
}

// VideoCRF is the x264 constant rate factor used per profile.
var VideoCRF = map[Profile]int{
	Desktop: 28,
	Web:     35,
}

// ImageJob asks an image optimizer to write Target from Source.
type ImageJob struct {
	Source    string
	Target    string
	SourceExt string
	TargetExt string
	MaxPixels int
	Quality   int
}

// VideoJob asks a transcoder to write Target from Source.
type VideoJob struct {
	Source   string
	Target   string
	CRF      int
	Duration time.Duration
}

// MetadataPatch describes the tag rewrite applied to a destination copy.
// Zero fields are left untouched.
type MetadataPatch struct {
	AllDates *time.Time
	Offset   string
	GPS      *Coordinates
}

func (p MetadataPatch) Empty() bool {
	return p.AllDates == nil && p.Offset == "" && p.GPS == nil
}
