package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
)

// ProgressBar draws transcoding progress on a single terminal line. It is
// safe for concurrent use and draws nothing when Out is not a terminal.
type ProgressBar struct {
	mu      sync.Mutex
	out     io.Writer
	bar     progress.Model
	enabled bool
	// last rendered whole percent per label
	last map[string]int
}

// NewProgressBar draws on stderr when it is a terminal.
func NewProgressBar() *ProgressBar {
	return newProgressBar(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
}

func newProgressBar(out io.Writer, enabled bool) *ProgressBar {
	return &ProgressBar{
		out: out,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		enabled: enabled,
		last:    map[string]int{},
	}
}

// Update redraws the bar for label. A fraction of 1 finishes the line.
func (p *ProgressBar) Update(label string, fraction float64) {
	if !p.enabled {
		return
	}
	fraction = max(0, min(fraction, 1))
	percent := int(fraction * 100)

	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.last[label]; ok && prev == percent {
		return
	}
	p.last[label] = percent

	line := fmt.Sprintf("\r%s %s %s",
		labelStyle.Render(label),
		p.bar.ViewAs(fraction),
		percentStyle.Render(fmt.Sprintf("%3d%%", percent)),
	)
	if percent == 100 {
		line += "\n"
		delete(p.last, label)
	}
	io.WriteString(p.out, line)
}

// Header renders the source and library locations shown before a run.
func Header(source string, libraries []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📷 photein"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s", iconFolder, shortenPath(source))))
	b.WriteString("\n")
	for _, lib := range libraries {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %s", iconArrow, shortenPath(lib))))
		b.WriteString("\n")
	}
	return b.String()
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home || strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + path[len(home):]
	}
	return path
}
