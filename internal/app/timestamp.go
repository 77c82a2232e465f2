package app

import (
	"context"
	"sync"
	"time"

	"photein/internal/domain"
	appErrors "photein/internal/errors"
	"photein/internal/logging"
)

// TimestampResolver decides the capture time of a file once per run.
type TimestampResolver struct {
	FS     FileSystem
	Zones  ZoneLookup
	Logger logging.Logger
	// LocalTZ is the --local-tz zone used for videos without GPS.
	LocalTZ *time.Location
	// Local is the process zone; nil means time.Local.
	Local *time.Location
	Shift time.Duration

	mu    sync.Mutex
	cache map[string]domain.CaptureTimestamp
}

// Resolve returns the capture timestamp of m: embedded metadata, then the
// file name, then filesystem birth time, then modification time, plus the
// configured shift. Results are memoized by path.
func (r *TimestampResolver) Resolve(ctx context.Context, m Media) (domain.CaptureTimestamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file := m.File()
	if ts, ok := r.cache[file.Path]; ok {
		return ts, nil
	}

	meta, err := m.Metadata(ctx)
	if err != nil {
		if appErrors.IsFatal(err) || ctx.Err() != nil {
			return domain.CaptureTimestamp{}, err
		}
		r.Logger.Verbosef("%s: unreadable metadata, trying file name (%v)", file.Name, err)
		meta = domain.Metadata{}
	}

	zone := r.zoneFor(file, meta)
	base, source, err := r.baseTime(m, meta, zone)
	if err != nil {
		return domain.CaptureTimestamp{}, err
	}

	ts := domain.CaptureTimestamp{
		Time:   base.Add(r.Shift),
		Source: source,
		Zone:   zone,
		Shift:  r.Shift,
	}
	r.Logger.Verbosef("%s: %s from %s", file.Name, ts.Stamp(), source)

	if r.cache == nil {
		r.cache = make(map[string]domain.CaptureTimestamp)
	}
	r.cache[file.Path] = ts
	return ts, nil
}

func (r *TimestampResolver) baseTime(m Media, meta domain.Metadata, zone *time.Location) (time.Time, domain.TimestampSource, error) {
	if meta.TakenAt != nil && !meta.TakenAt.IsZero() {
		return *meta.TakenAt, domain.SourceMetadata, nil
	}
	if ts, convention, ok := m.FilenameTimestamp(zone); ok {
		r.Logger.Verbosef("%s: matched %s naming", m.File().Name, convention)
		return ts, domain.SourceFilename, nil
	}

	path := m.File().Path
	if born, ok, err := r.FS.Birthtime(path); err == nil && ok {
		return born, domain.SourceFilesystem, nil
	}
	info, err := r.FS.Stat(path)
	if err != nil {
		return time.Time{}, "", appErrors.Wrap(appErrors.IOFailure, "stat", path, err)
	}
	return info.ModTime(), domain.SourceFilesystem, nil
}

// zoneFor picks the naming zone. Photos use the process zone; videos prefer
// the zone at their GPS position, then --local-tz.
func (r *TimestampResolver) zoneFor(file domain.MediaFile, meta domain.Metadata) *time.Location {
	if file.Kind == domain.Video {
		if meta.GPS != nil && r.Zones != nil {
			if loc, ok := r.Zones.ZoneAt(*meta.GPS); ok {
				return loc
			}
		}
		if r.LocalTZ != nil {
			return r.LocalTZ
		}
	}
	if r.Local != nil {
		return r.Local
	}
	return time.Local
}
