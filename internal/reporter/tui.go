package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/catrisk/runprep/internal/watcher"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

type scanMsg watcher.Result

type resultsClosedMsg struct{}

// WatchModel is the Bubbletea model for the live input-watch display.
type WatchModel struct {
	dir     string
	results <-chan watcher.Result
	cancel  func() // stops the watcher when the user quits

	last     *watcher.Result
	scans    int
	frame    int
	quitting bool
}

// NewWatchModel creates a watch model fed by results.
func NewWatchModel(dir string, results <-chan watcher.Result, cancel func()) WatchModel {
	return WatchModel{dir: dir, results: results, cancel: cancel}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(waitForScan(m.results), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForScan(results <-chan watcher.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return resultsClosedMsg{}
		}
		return scanMsg(res)
	}
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tickCmd()

	case scanMsg:
		res := watcher.Result(msg)
		m.last = &res
		m.scans++
		return m, waitForScan(m.results)

	case resultsClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	spinner := spinnerChars[m.frame%len(spinnerChars)]
	fmt.Fprintf(&b, "%s %s %s\n\n",
		spinner,
		headerStyle.Render("watching "+m.dir),
		dimStyle.Render(fmt.Sprintf("(%d scans)", m.scans)))

	if m.last == nil {
		b.WriteString(dimStyle.Render("scanning...") + "\n")
	} else {
		b.WriteString(FormatScan(*m.last))
	}

	b.WriteString("\n" + dimStyle.Render("q quit") + "\n")
	return b.String()
}
