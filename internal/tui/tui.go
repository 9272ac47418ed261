// Package tui renders a live sweep as a terminal leaderboard: a
// progress bar over the candidate grid and a table of the current top
// strategies, updated as workers finish.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/trendlab-go/trendlab/internal/sweep"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	borderStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

// ProgressMsg is posted into the program after each candidate
// finishes.
type ProgressMsg struct {
	Done  int
	Total int
	Entry sweep.Entry
}

// DoneMsg signals the sweep has drained.
type DoneMsg struct{}

// Model is the bubbletea model for the sweep view.
type Model struct {
	board    *sweep.Leaderboard
	progress progress.Model
	spinner  spinner.Model
	tbl      table.Model

	done      int
	total     int
	finished  bool
	lastHash  string
	width     int
}

// New builds the sweep view over board.
func New(board *sweep.Leaderboard, total int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Signal", Width: 18},
			{Title: "PM", Width: 20},
			{Title: "Exec", Width: 14},
			{Title: "Level", Width: 13},
			{Title: "Score", Width: 8},
			{Title: "Status", Width: 9},
		}),
		table.WithHeight(12),
		table.WithFocused(true),
	)

	return Model{
		board:    board,
		progress: progress.New(progress.WithDefaultGradient()),
		spinner:  sp,
		tbl:      tbl,
		total:    total,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 8
		return m, nil
	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.lastHash = string(msg.Entry.FullHash)
		m.refreshRows()
		return m, nil
	case DoneMsg:
		m.finished = true
		m.refreshRows()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m *Model) refreshRows() {
	top := m.board.Top(12)
	rows := make([]table.Row, 0, len(top))
	for i, e := range top {
		status := failStyle.Render("reject")
		if e.Promoted {
			status = passStyle.Render("pass")
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			e.Config.Signal.ComponentType,
			e.Config.PositionManager.ComponentType,
			e.Config.ExecutionModel.ComponentType,
			e.LevelReached,
			fmt.Sprintf("%.3f", e.Score),
			status,
		})
	}
	m.tbl.SetRows(rows)
}

func (m Model) View() string {
	header := titleStyle.Render("trendlab sweep")
	var status string
	if m.finished {
		status = statusStyle.Render(fmt.Sprintf("complete: %d candidates evaluated — q to quit", m.done))
	} else {
		status = fmt.Sprintf("%s %s", m.spinner.View(),
			statusStyle.Render(fmt.Sprintf("%d/%d candidates  last %.8s", m.done, m.total, m.lastHash)))
	}

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.progress.ViewAs(frac),
		status,
		borderStyle.Render(m.tbl.View()),
	) + "\n"
}
