package ffmpeg

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"photein/internal/domain"
)

const iphoneProbe = `{
  "streams": [
    {"codec_type": "video", "bit_rate": "9000000", "width": 1920, "height": 1080,
     "tags": {"creation_time": "2021-04-28T00:15:00.000000Z"}},
    {"codec_type": "audio", "bit_rate": "96000"}
  ],
  "format": {
    "duration": "12.500000",
    "bit_rate": "9123456",
    "tags": {
      "creation_time": "2021-04-28T00:15:00.000000Z",
      "com.apple.quicktime.location.ISO6709": "+35.6586+139.7454+040.000/"
    }
  }
}`

func TestProbeResultMetadata(t *testing.T) {
	var result ProbeResult
	if err := json.Unmarshal([]byte(iphoneProbe), &result); err != nil {
		t.Fatal(err)
	}
	meta := result.Metadata()

	if meta.Bitrate == nil || *meta.Bitrate != 9123456 {
		t.Fatalf("unexpected bitrate %v", meta.Bitrate)
	}
	if meta.Duration != 12500*time.Millisecond {
		t.Fatalf("unexpected duration %v", meta.Duration)
	}
	want := time.Date(2021, 4, 28, 0, 15, 0, 0, time.UTC)
	if meta.TakenAt == nil || !meta.TakenAt.Equal(want) {
		t.Fatalf("unexpected creation time %v", meta.TakenAt)
	}
	if meta.GPS == nil || meta.GPS.Latitude != 35.6586 || meta.GPS.Longitude != 139.7454 {
		t.Fatalf("unexpected GPS %+v", meta.GPS)
	}
	if meta.Width != 1920 || meta.Height != 1080 {
		t.Fatalf("unexpected dimensions %dx%d", meta.Width, meta.Height)
	}
}

func TestProbeResultWithoutBitrateIsCorruptSignal(t *testing.T) {
	result := ProbeResult{Format: Format{BitRate: "N/A", Tags: map[string]string{"creation_time": "1970-01-01T00:00:00.000000Z"}}}
	meta := result.Metadata()
	if meta.Bitrate != nil {
		t.Fatalf("expected no bitrate, got %d", *meta.Bitrate)
	}
	if meta.TakenAt != nil {
		t.Fatalf("expected epoch creation time to be ignored")
	}
}

func TestBitRateFallsBackToStreams(t *testing.T) {
	result := ProbeResult{Streams: []Stream{{BitRate: "1000"}, {BitRate: "500"}}}
	if got := result.BitRate(); got != 1500 {
		t.Fatalf("expected 1500, got %d", got)
	}
}

func TestParseProgressLine(t *testing.T) {
	if d, ok := ParseProgressLine("out_time_us=2500000"); !ok || d != 2500*time.Millisecond {
		t.Fatalf("unexpected result %v %v", d, ok)
	}
	if _, ok := ParseProgressLine("progress=continue"); ok {
		t.Fatalf("expected non-position line to be ignored")
	}
	if _, ok := ParseProgressLine("out_time_us=N/A"); ok {
		t.Fatalf("expected N/A to be ignored")
	}
}

func TestArgsSelectsEncoderByContainer(t *testing.T) {
	mp4 := strings.Join(Args(domain.VideoJob{Source: "in.mov", Target: "out.mp4", CRF: 28}), " ")
	if !strings.Contains(mp4, "-map_metadata 0 -movflags use_metadata_tags -c:v libx264 -crf 28") {
		t.Fatalf("unexpected mp4 args: %s", mp4)
	}
	webm := strings.Join(Args(domain.VideoJob{Source: "in.webm", Target: "out.webm", CRF: 35}), " ")
	if !strings.Contains(webm, "libvpx-vp9") {
		t.Fatalf("unexpected webm args: %s", webm)
	}
	if !strings.HasSuffix(webm, "-progress pipe:1 out.webm") {
		t.Fatalf("expected target last: %s", webm)
	}
}

func TestReadProgressReportsFractions(t *testing.T) {
	var got []float64
	input := "frame=10\nout_time_us=5000000\nprogress=continue\nout_time_us=20000000\nout_time_us=20000000\n"
	finished := readProgress(strings.NewReader(input), 10*time.Second, func(f float64) { got = append(got, f) })
	if len(got) != 2 || got[0] != 0.5 || got[1] != 1 {
		t.Fatalf("unexpected fractions %v", got)
	}
	if !finished {
		t.Fatal("expected completion to be reported once")
	}
}

func TestReadProgressUnfinished(t *testing.T) {
	var got []float64
	finished := readProgress(strings.NewReader("out_time_us=2500000\n"), 10*time.Second, func(f float64) { got = append(got, f) })
	if finished || len(got) != 1 || got[0] != 0.25 {
		t.Fatalf("expected one partial fraction, got %v (finished=%v)", got, finished)
	}
}
