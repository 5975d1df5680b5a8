// Package cli implements the ganttkit command-line interface.
// This file contains shared helpers used across commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/ganttkit/ganttkit/internal/config"
	"github.com/ganttkit/ganttkit/internal/db"
	"github.com/ganttkit/ganttkit/internal/document"
	"github.com/ganttkit/ganttkit/internal/state"
	"github.com/ganttkit/ganttkit/internal/task"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Faint(true)
	milestoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	projectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("135"))
	criticalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// isTTY reports whether stdout is an interactive terminal. Styled output is
// skipped when piping.
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// styled applies a lipgloss style only on interactive terminals.
func styled(s lipgloss.Style, text string) string {
	if !isTTY() {
		return text
	}
	return s.Render(text)
}

// termWidth returns the terminal width, defaulting to 100 columns when
// stdout is not a terminal.
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

// progressBar renders a ten-cell progress bar like [####------] 40%.
func progressBar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct / 10
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat("-", 10-filled), pct)
}

// typeLabel renders a task type tag, colored on TTYs.
func typeLabel(t task.Type) string {
	switch t {
	case task.TypeMilestone:
		return styled(milestoneStyle, "milestone")
	case task.TypeProject:
		return styled(projectStyle, "project")
	default:
		return "task"
	}
}

// loadChartFile replaces the manager's chart with the contents of a file
// and resets the undo history.
func loadChartFile(m *state.Manager, path string) error {
	doc, err := document.ReadFile(path)
	if err != nil {
		return err
	}
	m.UpdateTasks(doc.Tasks)
	if err := m.UpdateDependencies(doc.Dependencies); err != nil {
		return err
	}
	m.ClearHistory()
	return nil
}

// openStore opens the configured chart database.
func openStore(ctx context.Context, cfg *config.Config) (*db.Store, error) {
	store, err := db.Open(ctx, cfg.Database, setupLogger(cfg))
	if err != nil {
		return nil, fmt.Errorf("open chart database: %w", err)
	}
	return store, nil
}
