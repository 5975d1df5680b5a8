// Package tui renders an interactive terminal board over a chart's state
// manager: a task tree on the left, date bars on the right, with collapse,
// undo/redo, and auto-schedule keybindings.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/state"
	"github.com/ganttkit/ganttkit/internal/task"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	statusStyle    = lipgloss.NewStyle().Faint(true)
	taskBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	milestoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	projectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("135"))
)

// Config holds board configuration.
type Config struct {
	// Title is shown in the header, usually the chart name.
	Title string
	// State is the chart being displayed. Required.
	State *state.Manager
	// Logger receives board lifecycle events. Defaults to slog.Default.
	Logger *slog.Logger
}

// Board is the top-level Bubble Tea model. All chart reads and mutations go
// through the state manager, so undo, redo, and collapse behave exactly as
// they do over the API.
type Board struct {
	title  string
	state  *state.Manager
	logger *slog.Logger
	keys   KeyMap

	width    int
	height   int
	ready    bool
	quitting bool
	showHelp bool

	cursor int // index into the visible rows
	offset int // first row on screen
	status string
}

// New constructs a board over the given state manager.
func New(cfg Config) Board {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Board{
		title:  cfg.Title,
		state:  cfg.State,
		logger: logger,
		keys:   DefaultKeyMap(),
	}
}

// Init implements tea.Model. Bubble Tea sends the initial WindowSizeMsg on
// startup, so no command is needed here.
func (b Board) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.ready = true
		b.clamp()
		return b, nil

	case tea.KeyMsg:
		if b.showHelp {
			// Any key dismisses the help overlay.
			b.showHelp = false
			return b, nil
		}
		return b.handleKey(msg)
	}
	return b, nil
}

func (b Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := b.state.VisibleOrder()

	switch {
	case key.Matches(msg, b.keys.Quit):
		b.quitting = true
		return b, tea.Quit

	case key.Matches(msg, b.keys.Help):
		b.showHelp = true

	case key.Matches(msg, b.keys.Up):
		b.cursor--
	case key.Matches(msg, b.keys.Down):
		b.cursor++
	case key.Matches(msg, b.keys.PageUp):
		b.cursor -= b.rowCount()
	case key.Matches(msg, b.keys.PageDown):
		b.cursor += b.rowCount()
	case key.Matches(msg, b.keys.Home):
		b.cursor = 0
	case key.Matches(msg, b.keys.End):
		b.cursor = len(rows) - 1

	case key.Matches(msg, b.keys.Collapse):
		if b.cursor < len(rows) {
			t := rows[b.cursor]
			if len(t.Children) > 0 {
				if err := b.state.ToggleTaskCollapse(t.ID); err == nil {
					b.status = fmt.Sprintf("toggled #%d", t.ID)
				}
			}
		}

	case key.Matches(msg, b.keys.Undo):
		if b.state.Undo() {
			b.status = "undone"
		} else {
			b.status = "nothing to undo"
		}

	case key.Matches(msg, b.keys.Redo):
		if b.state.Redo() {
			b.status = "redone"
		} else {
			b.status = "nothing to redo"
		}

	case key.Matches(msg, b.keys.Schedule):
		b.state.AutoSchedule()
		b.status = "schedule applied"
	}

	b.clamp()
	return b, nil
}

// clamp keeps the cursor inside the visible rows and scrolls the window so
// the cursor stays on screen.
func (b *Board) clamp() {
	n := len(b.state.VisibleOrder())
	if b.cursor >= n {
		b.cursor = n - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}

	rows := b.rowCount()
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+rows {
		b.offset = b.cursor - rows + 1
	}
	if b.offset < 0 {
		b.offset = 0
	}
}

// rowCount is the number of task rows that fit between the header and the
// status bar.
func (b Board) rowCount() int {
	n := b.height - 2
	if n < 1 {
		return 1
	}
	return n
}

// View implements tea.Model.
func (b Board) View() string {
	if b.quitting {
		return ""
	}
	if !b.ready {
		return "Loading board..."
	}
	if b.showHelp {
		return b.helpView()
	}

	var sb strings.Builder
	sb.WriteString(b.headerView())
	sb.WriteString("\n")

	rows := b.state.VisibleOrder()
	start, span := b.chartSpan(rows)

	count := b.rowCount()
	for i := b.offset; i < len(rows) && i < b.offset+count; i++ {
		line := b.rowView(rows[i], start, span)
		if i == b.cursor {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(rows) == 0 {
		sb.WriteString(statusStyle.Render("  (no tasks)"))
		sb.WriteString("\n")
	}

	sb.WriteString(b.statusView(len(rows)))
	return sb.String()
}

func (b Board) headerView() string {
	title := "ganttkit"
	if b.title != "" {
		title += " — " + b.title
	}
	return titleStyle.Width(b.width).Render(title)
}

func (b Board) statusView(total int) string {
	left := fmt.Sprintf("%d/%d  undo:%d redo:%d",
		b.cursor+1, total, b.state.UndoStackSize(), b.state.RedoStackSize())
	hints := "space collapse · u undo · r redo · s schedule · ? help · q quit"
	if b.status != "" {
		hints = b.status
	}
	return statusStyle.Render(left + "  " + hints)
}

// labelWidth is the fixed width of the task name column; the remaining
// columns hold the date bars.
const labelWidth = 34

// rowView renders one task row: collapse marker, indented name, then a bar
// spanning the task's days scaled to the chart's full range.
func (b Board) rowView(t *task.Task, start dates.Date, span int) string {
	marker := "  "
	if len(t.Children) > 0 {
		if t.Collapsed {
			marker = "▸ "
		} else {
			marker = "▾ "
		}
	}

	level := 0
	if ct, ok := b.state.TaskCache(t.ID); ok {
		level = ct.Level
	}

	label := strings.Repeat("  ", level) + marker + t.Name
	if len([]rune(label)) > labelWidth {
		label = string([]rune(label)[:labelWidth-1]) + "…"
	}
	label = fmt.Sprintf("%-*s", labelWidth, label)

	barArea := b.width - labelWidth - 1
	if barArea < 10 {
		return label
	}

	offsetDays := dates.DaysBetween(start, t.Start)
	lead := offsetDays * barArea / span
	width := t.Duration() * barArea / span
	if width < 1 {
		width = 1
	}
	if lead+width > barArea {
		width = barArea - lead
	}
	if width < 0 {
		width = 0
	}

	bar := strings.Repeat(" ", lead) + b.barStyle(t.Type).Render(strings.Repeat("█", width))
	return label + " " + bar
}

func (b Board) barStyle(t task.Type) lipgloss.Style {
	switch t {
	case task.TypeMilestone:
		return milestoneStyle
	case task.TypeProject:
		return projectStyle
	default:
		return taskBarStyle
	}
}

// chartSpan returns the earliest start among the rows and the inclusive day
// count to the latest end, never less than one day.
func (b Board) chartSpan(rows []*task.Task) (dates.Date, int) {
	if len(rows) == 0 {
		today := dates.Today()
		return today, 1
	}
	start, end := rows[0].Start, rows[0].End
	for _, t := range rows[1:] {
		if t.Start.Before(start) {
			start = t.Start
		}
		if t.End.After(end) {
			end = t.End
		}
	}
	span := dates.InclusiveDays(start, end)
	if span < 1 {
		span = 1
	}
	return start, span
}

func (b Board) helpView() string {
	bindings := []key.Binding{
		b.keys.Up, b.keys.Down, b.keys.PageUp, b.keys.PageDown,
		b.keys.Home, b.keys.End, b.keys.Collapse,
		b.keys.Undo, b.keys.Redo, b.keys.Schedule,
		b.keys.Help, b.keys.Quit,
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Keyboard shortcuts"))
	sb.WriteString("\n\n")
	for _, bind := range bindings {
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", bind.Help().Key, bind.Help().Desc))
	}
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("Press any key to close"))

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Render(sb.String())
	return lipgloss.Place(b.width, b.height, lipgloss.Center, lipgloss.Center, box)
}

// Run starts the board full screen and blocks until the user quits.
func Run(cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("starting board", "title", cfg.Title, "tasks", len(cfg.State.Tasks()))

	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}
