package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"photein/internal/app"
	"photein/internal/config"
	"photein/internal/domain"
	"photein/internal/infra/exif"
	"photein/internal/infra/exiftool"
	"photein/internal/infra/ffmpeg"
	"photein/internal/infra/fs"
	"photein/internal/infra/geo"
	"photein/internal/infra/imaging"
	"photein/internal/infra/lock"
	"photein/internal/infra/lsof"
	"photein/internal/logging"
	"photein/internal/presentation"
	"photein/internal/tui"
)

func runImport(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger, err := logging.New(logging.Options{
		Writer:  cmd.ErrOrStderr(),
		Format:  cfg.LogFormat,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		var roots []string
		for _, dest := range cfg.Destinations() {
			roots = append(roots, dest.Root)
		}
		cmd.PrintErrln(tui.Header(cfg.SourceDir, roots))
	}

	local := time.Local
	filesystem := fs.OSFS{}
	tags := exiftool.Tool{Location: local}
	bar := tui.NewProgressBar()

	media := &app.MediaFactory{
		Config:         cfg,
		FS:             filesystem,
		ImageReader:    exif.Reader{Location: local, Fallback: tags},
		VideoReader:    ffmpeg.Prober{},
		ImageOptimizer: imaging.Optimizer{Tags: tags},
		VideoOptimizer: ffmpeg.Transcoder{},
		Progress:       bar.Update,
	}

	importer := &app.Importer{
		Config: cfg,
		FS:     filesystem,
		Resolver: &app.TimestampResolver{
			FS:      filesystem,
			Zones:   geo.Lookup{},
			Logger:  logger,
			LocalTZ: cfg.LocalTZ,
			Local:   local,
			Shift:   cfg.ShiftDuration(),
		},
		Planner: &app.Planner{
			Destinations: cfg.Destinations(),
			Collisions:   app.CollisionResolver{FS: filesystem},
		},
		Writer:   tags,
		InUse:    lsof.Probe{},
		Prompter: tui.NewPrompter(),
		Logger:   logger,
	}

	batch := &app.Batch{
		Config:   cfg,
		FS:       filesystem,
		Media:    media,
		Importer: importer,
		Locker:   lock.Libraries{},
		Logger:   logger,
		OnFile: func(done, total int, result domain.FileResult) {
			logger.Verbosef("[%d/%d] %s: %s", done, total, result.File.Name, result.Status)
		},
	}

	report, err := batch.Run(ctx)
	printer := presentation.Printer{Writer: cmd.OutOrStdout(), Verbose: cfg.Verbose}
	if len(report.Results) > 0 {
		printer.PrintReport(report, cfg.DryRun)
	}
	return err
}
