package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"photein/internal/config"
	"photein/internal/domain"
	appErrors "photein/internal/errors"
	"photein/internal/logging"
)

// Importer moves one file into every configured library.
type Importer struct {
	Config   config.Config
	FS       FileSystem
	Resolver *TimestampResolver
	Planner  *Planner
	Writer   MetadataWriter
	InUse    InUseProbe
	Prompter Prompter
	Logger   logging.Logger
	// StagingDir holds optimizer output; it defaults to <tmp>/photein.
	StagingDir string
	NewID      func() string
}

// Import runs corruption check, gates, planning, the per-library tasks and
// source cleanup. The returned error is non-nil only when the batch must stop.
func (im *Importer) Import(ctx context.Context, m Media) (domain.FileResult, error) {
	file := m.File()
	result := domain.FileResult{File: file}
	log := im.Logger.With("file", file.Name)

	corrupted, err := m.Corrupted(ctx)
	if err != nil {
		if appErrors.IsFatal(err) {
			result.Status, result.Err = domain.StatusFailed, err
			return result, err
		}
		log.Verbosef("%s: corruption check failed: %v", file.Name, err)
	}
	if corrupted {
		log.Error(fmt.Sprintf("%s: cannot import corrupted file", file.Name))
		result.Status = domain.StatusCorrupted
		return result, nil
	}

	if im.Config.Interactive && im.Prompter != nil {
		ok, err := im.Prompter.Confirm(fmt.Sprintf("Import %s?", file.Path))
		if err != nil {
			result.Status, result.Err = domain.StatusFailed, err
			return result, appErrors.Wrap(appErrors.Internal, "prompt", file.Path, err)
		}
		if !ok {
			result.Status = domain.StatusDenied
			return result, nil
		}
	}

	if im.Config.Safe && im.InUse != nil {
		command, pid, inUse, err := im.InUse.Holder(ctx, file.Path)
		if err != nil {
			if appErrors.IsFatal(err) {
				result.Status, result.Err = domain.StatusFailed, err
				return result, err
			}
			log.Warn(fmt.Sprintf("%s: cannot check for open handles: %v", file.Name, err))
		}
		if inUse {
			log.Warn(fmt.Sprintf("skipping %s: file in use by %s (PID %d)", file.Path, command, pid))
			result.Status = domain.StatusInUse
			return result, nil
		}
	}

	ts, err := im.Resolver.Resolve(ctx, m)
	if err != nil {
		result.Status, result.Err = domain.StatusFailed, err
		if appErrors.IsFatal(err) {
			return result, err
		}
		log.Error(fmt.Sprintf("%s: %s", file.Name, appErrors.UserMessage(err)))
		return result, nil
	}
	result.Timestamp = ts

	plans, err := im.Planner.Plan(m, ts)
	if err != nil {
		log.Error(fmt.Sprintf("%s: %s", file.Name, appErrors.UserMessage(err)))
		result.Status, result.Err = domain.StatusFailed, err
		return result, nil
	}

	var eligible []domain.DestinationPlan
	for _, plan := range plans {
		if plan.Eligible {
			eligible = append(eligible, plan)
		} else {
			log.Verbosef("%s: not eligible for the %s library", file.Name, plan.Profile)
		}
	}
	if len(eligible) == 0 {
		result.Status = domain.StatusIneligible
		return result, nil
	}

	outcomes := make([]taskOutcome, len(eligible))
	var wg sync.WaitGroup
	for i, plan := range eligible {
		wg.Add(1)
		go func(i int, plan domain.DestinationPlan) {
			defer wg.Done()
			outcomes[i] = im.runTask(ctx, m, ts, plan, log)
		}(i, plan)
	}
	wg.Wait()

	var errs []error
	fatal := false
	for _, outcome := range outcomes {
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			fatal = fatal || appErrors.IsFatal(outcome.err)
			continue
		}
		result.Destinations = append(result.Destinations, outcome.result)
	}
	if joined := errors.Join(errs...); joined != nil {
		result.Status, result.Err = domain.StatusFailed, joined
		if fatal {
			return result, joined
		}
		log.Error(fmt.Sprintf("%s: import failed, source kept: %v", file.Name, joined))
		return result, nil
	}

	result.Status = domain.StatusImported
	if im.Config.DryRun || im.Config.Keep {
		return result, nil
	}
	if err := im.FS.Remove(file.Path); err != nil {
		log.Warn(fmt.Sprintf("%s: cannot remove source: %v", file.Name, err))
		return result, nil
	}
	result.SourceRemoved = true
	return result, nil
}

type taskOutcome struct {
	result domain.DestinationResult
	err    error
}

// runTask optimizes into a private staging file when the profile calls for
// it, then places the staged output or a plain copy at the planned path.
func (im *Importer) runTask(ctx context.Context, m Media, ts domain.CaptureTimestamp, plan domain.DestinationPlan, log logging.Logger) taskOutcome {
	file := m.File()
	dryRun := im.Config.DryRun
	out := domain.DestinationResult{Profile: plan.Profile, Path: plan.FinalPath}
	log = log.With("library", string(plan.Profile))

	var staging string
	if plan.Optimize {
		staging = im.stagingPath(plan)
		if !dryRun {
			if err := im.FS.MkdirAll(filepath.Dir(staging), 0o755); err != nil {
				return taskOutcome{err: appErrors.Wrap(appErrors.IOFailure, "mkdir", filepath.Dir(staging), err)}
			}
		}
		optimized, err := m.Optimize(ctx, plan.Profile, staging, dryRun)
		if err != nil {
			im.discard(staging)
			if appErrors.IsFatal(err) {
				return taskOutcome{err: err}
			}
			return taskOutcome{err: appErrors.Wrap(appErrors.IOFailure, "optimize", file.Path, err)}
		}
		if optimized {
			verb := "optimizing"
			if file.Kind == domain.Video {
				verb = "transcoding"
			}
			log.Info(fmt.Sprintf("%s %s for %s", verb, file.Name, plan.Profile))
		}
		out.Optimized = optimized
	}

	verb := "moving"
	if im.Config.Keep {
		verb = "copying"
	}
	log.Info(fmt.Sprintf("%s %s to %s", verb, file.Name, plan.FinalPath))

	if dryRun {
		return taskOutcome{result: out}
	}

	if err := im.FS.MkdirAll(filepath.Dir(plan.FinalPath), 0o755); err != nil {
		im.discard(staging)
		return taskOutcome{err: appErrors.Wrap(appErrors.IOFailure, "mkdir", filepath.Dir(plan.FinalPath), err)}
	}
	if out.Optimized {
		if err := im.FS.Rename(staging, plan.FinalPath); err != nil {
			im.discard(staging)
			return taskOutcome{err: appErrors.Wrap(appErrors.IOFailure, "move", plan.FinalPath, err)}
		}
	} else if err := im.FS.CopyFile(file.Path, plan.FinalPath); err != nil {
		return taskOutcome{err: appErrors.Wrap(appErrors.IOFailure, "copy", plan.FinalPath, err)}
	}

	info, err := im.FS.Stat(plan.FinalPath)
	if err != nil {
		return taskOutcome{err: appErrors.Wrap(appErrors.IOFailure, "stat", plan.FinalPath, err)}
	}
	out.Bytes = info.Size()
	if err := im.FS.Chmod(plan.FinalPath, info.Mode().Perm()&^0o111); err != nil {
		return taskOutcome{err: appErrors.Wrap(appErrors.IOFailure, "chmod", plan.FinalPath, err)}
	}

	if im.rewritesMetadata() && im.Writer != nil {
		patch := m.MetadataPatch(ts)
		if !patch.Empty() {
			if err := im.Writer.RewriteMetadata(ctx, plan.FinalPath, patch); err != nil {
				if appErrors.IsFatal(err) {
					return taskOutcome{err: err}
				}
				return taskOutcome{err: appErrors.Wrap(appErrors.ExifFailure, "exiftool", plan.FinalPath, err)}
			}
		}
	}
	return taskOutcome{result: out}
}

// rewritesMetadata is true when a shift or --local-tz changes what the tags
// should say.
func (im *Importer) rewritesMetadata() bool {
	return im.Config.ShiftHours != 0 || im.Config.LocalTZ != nil
}

// stagingPath is <staging>/<profile>/<id>-<final name>, private to one task.
func (im *Importer) stagingPath(plan domain.DestinationPlan) string {
	dir := im.StagingDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "photein")
	}
	newID := im.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return filepath.Join(dir, string(plan.Profile), newID()+"-"+filepath.Base(plan.FinalPath))
}

func (im *Importer) discard(staging string) {
	if staging == "" {
		return
	}
	if ok, _ := im.FS.Exists(staging); ok {
		_ = im.FS.Remove(staging)
	}
}
