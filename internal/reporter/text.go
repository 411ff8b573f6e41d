// Package reporter renders scan results and run history for the terminal.
package reporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/catrisk/runprep/internal/ledger"
	"github.com/catrisk/runprep/internal/watcher"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
)

// FormatScan renders one scan result as a per-layer listing.
func FormatScan(res watcher.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(res.Dir), dimStyle.Render(res.CheckedAt.Format("15:04:05")))
	if res.Err != nil {
		fmt.Fprintf(&b, "  %s %v\n", badStyle.Render("error"), res.Err)
		return b.String()
	}

	for _, layer := range res.Layers {
		if layer.Clean() {
			fmt.Fprintf(&b, "  %-8s %s\n", layer.Layer, okStyle.Render("ok"))
			continue
		}
		fmt.Fprintf(&b, "  %-8s", layer.Layer)
		if len(layer.Missing) > 0 {
			fmt.Fprintf(&b, " %s %s", badStyle.Render("missing"), strings.Join(layer.Missing, ", "))
		}
		if len(layer.Stale) > 0 {
			fmt.Fprintf(&b, " %s %s", warnStyle.Render("stale"), strings.Join(layer.Stale, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRuns renders ledger entries as a table, newest first.
func FormatRuns(entries []ledger.Entry) string {
	if len(entries) == 0 {
		return dimStyle.Render("no recorded runs") + "\n"
	}

	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("%-20s %-9s %-10s %-9s %s", "STARTED", "STAGE", "STATUS", "DURATION", "RUN")))

	for _, e := range entries {
		status := fmt.Sprintf("%-10s", e.Status)
		switch e.Status {
		case ledger.StatusCompleted:
			status = okStyle.Render(status)
		case ledger.StatusFailed:
			status = badStyle.Render(status)
		default:
			status = warnStyle.Render(status)
		}

		dur := "-"
		if !e.FinishedAt.IsZero() {
			dur = e.FinishedAt.Sub(e.StartedAt).Round(time.Millisecond).String()
		}

		fmt.Fprintf(&b, "%-20s %-9s %s %-9s %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Stage, status, dur, e.RunPath)

		if e.Error != "" {
			fmt.Fprintf(&b, "  %s\n", dimStyle.Render(e.Error))
		}
	}
	return b.String()
}
