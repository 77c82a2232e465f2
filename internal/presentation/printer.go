package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"photein/internal/domain"
	appErrors "photein/internal/errors"
)

type Printer struct {
	Writer  io.Writer
	Verbose bool
}

// PrintReport writes the imported and skipped files followed by a
// per-library summary table.
func (p Printer) PrintReport(report domain.Report, dryRun bool) {
	heading := "Imported:"
	if dryRun {
		heading = "Would import:"
	}

	var imported, skipped, failed []domain.FileResult
	for _, result := range report.Results {
		switch {
		case result.Status == domain.StatusImported:
			imported = append(imported, result)
		case result.Status.Skipped():
			skipped = append(skipped, result)
		default:
			failed = append(failed, result)
		}
	}

	if len(imported) > 0 {
		fmt.Fprintln(p.Writer, heading)
		fmt.Fprintln(p.Writer)
		for _, line := range truncate(formatImportLines(imported), p.Verbose) {
			fmt.Fprintln(p.Writer, line)
		}
		fmt.Fprintln(p.Writer)
	}

	if len(skipped) > 0 {
		fmt.Fprintln(p.Writer, "Skipped:")
		for _, line := range truncate(formatSkipLines(skipped), p.Verbose) {
			fmt.Fprintln(p.Writer, line)
		}
		fmt.Fprintln(p.Writer)
	}

	if len(failed) > 0 {
		fmt.Fprintln(p.Writer, "Failed:")
		for _, result := range failed {
			fmt.Fprintf(p.Writer, "%s: %s\n", result.File.Name, failureReason(result.Err))
		}
		fmt.Fprintln(p.Writer)
	}

	if summary := libraryTable(report); summary != "" {
		fmt.Fprintln(p.Writer, summary)
	}
	p.printSummary(report, dryRun)

	if p.Verbose && len(report.Warnings) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, "Warnings:")
		for _, warning := range report.Warnings {
			fmt.Fprintln(p.Writer, "- "+warning)
		}
	}
}

func (p Printer) printSummary(report domain.Report, dryRun bool) {
	if dryRun {
		fmt.Fprintf(p.Writer, "Would import %d files; nothing was changed.\n", report.Imported)
	} else {
		fmt.Fprintf(p.Writer, "Imported %d files.\n", report.Imported)
	}
	if report.Skipped > 0 {
		fmt.Fprintf(p.Writer, "Skipped %d files; they were left in place.\n", report.Skipped)
	}
	if report.Failed > 0 {
		fmt.Fprintf(p.Writer, "Failed to import %d files; they were left in place.\n", report.Failed)
	}
}

func formatImportLines(results []domain.FileResult) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		date := result.Timestamp.Local().Format("2006-01-02 15:04")
		profiles := make([]string, 0, len(result.Destinations))
		for _, dest := range result.Destinations {
			profiles = append(profiles, string(dest.Profile))
		}
		lines = append(lines, fmt.Sprintf("Import %s  %s  (%s)", result.File.Name, date, strings.Join(profiles, ", ")))
	}
	return lines
}

func formatSkipLines(results []domain.FileResult) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		lines = append(lines, fmt.Sprintf("%s (%s)", result.File.Name, skipReason(result.Status)))
	}
	return lines
}

// truncate keeps the first and last two lines unless verbose.
func truncate(lines []string, verbose bool) []string {
	if verbose || len(lines) <= 4 {
		return lines
	}
	head := lines[:2]
	tail := lines[len(lines)-2:]
	return append(append(append([]string{}, head...), fmt.Sprintf("... %d more ...", len(lines)-4)), tail...)
}

func skipReason(status domain.FileStatus) string {
	switch status {
	case domain.StatusCorrupted:
		return "corrupted"
	case domain.StatusDenied:
		return "declined"
	case domain.StatusInUse:
		return "in use"
	case domain.StatusIneligible:
		return "no eligible library"
	default:
		return string(status)
	}
}

func failureReason(err error) string {
	if err == nil {
		return "unknown error"
	}
	return appErrors.UserMessage(err)
}

func libraryTable(report domain.Report) string {
	counts := report.CountByProfile()
	if len(counts) == 0 {
		return ""
	}
	bytes := report.BytesByProfile()
	title := cases.Title(language.English)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Library", "Files", "Size"})
	for _, profile := range domain.Profiles {
		count, ok := counts[profile]
		if !ok {
			continue
		}
		tw.AppendRow(table.Row{title.String(string(profile)), count, humanize.Bytes(uint64(bytes[profile]))})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
