package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/portscope/portscope/internal/config"
	"github.com/portscope/portscope/internal/port"
	"github.com/portscope/portscope/internal/process"
)

// viewState tracks which screen the TUI is currently showing.
type viewState int

const (
	viewTable viewState = iota
	viewDetail
	viewKillConfirm
	viewKillResult
	viewFilter
)

// sortField defines what column to sort by.
type sortField int

const (
	sortByPort sortField = iota
	sortByPID
	sortByCommand
)

// Messages for async operations.
type scanDoneMsg struct {
	entries []port.PortEntry
	err     error
}

type tickMsg time.Time

type killDoneMsg struct {
	pid     int
	command string
	port    int
	err     error
}

// Model is the main Bubbletea model for the portscope TUI.
type Model struct {
	scanner  port.Scanner
	killer   process.Killer
	cfg      *config.Config
	version  string
	entries  []port.PortEntry
	filtered []int // indices into entries for currently displayed items

	cursor       int
	scrollOffset int
	sortBy       sortField
	searchQuery  string
	paused       bool

	// Detail view state.
	detailEntry *port.PortEntry

	// Kill confirmation state.
	killEntry  *port.PortEntry
	killResult string
	killErr    error

	scanning bool
	scanErr  error
	spinner  spinner.Model

	width  int
	height int

	currentView viewState
}

// New creates a new TUI model.
func New(scanner port.Scanner, killer process.Killer, cfg *config.Config, version string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorCyan)

	return Model{
		scanner:     scanner,
		killer:      killer,
		cfg:         cfg,
		version:     version,
		scanning:    true,
		spinner:     sp,
		currentView: viewTable,
	}
}

// Init starts the spinner and kicks off the initial scan.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.doScan(), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	interval := m.cfg.RefreshDuration()
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) doScan() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.scanner.Scan(context.Background())
		return scanDoneMsg{entries: entries, err: err}
	}
}

func (m Model) doKill(pid int, command string, portNum int) tea.Cmd {
	killer := m.killer
	return func() tea.Msg {
		err := killer.Kill(context.Background(), pid)
		var killErr *process.KillError
		if errors.As(err, &killErr) && killErr.Kind == process.NotFound {
			// Already gone counts as freed.
			err = nil
		}
		return killDoneMsg{pid: pid, command: command, port: portNum, err: err}
	}
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.scanning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tickMsg:
		if !m.paused && m.currentView == viewTable {
			return m, tea.Batch(m.doScan(), m.tickCmd())
		}
		return m, m.tickCmd()

	case scanDoneMsg:
		m.scanning = false
		m.scanErr = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.sortEntries()
			m.rebuildFiltered()
		}
		return m, nil

	case killDoneMsg:
		m.killErr = msg.err
		if msg.err == nil {
			m.killResult = fmt.Sprintf("Killed %s (PID %d) on port %d", msg.command, msg.pid, msg.port)
		}
		m.currentView = viewKillResult
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.currentView {
		case viewTable:
			return m.updateTable(msg)
		case viewDetail:
			return m.updateDetail(msg)
		case viewKillConfirm:
			return m.updateKillConfirm(msg)
		case viewKillResult:
			return m.updateKillResult(msg)
		case viewFilter:
			return m.updateFilter(msg)
		}
	}

	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if len(m.filtered) > 0 && m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}
	case "K":
		if entry := m.selectedEntry(); entry != nil {
			m.killEntry = entry
			m.currentView = viewKillConfirm
		}
	case "i", "enter":
		if entry := m.selectedEntry(); entry != nil {
			m.detailEntry = entry
			m.currentView = viewDetail
		}
	case "r":
		m.scanning = true
		return m, tea.Batch(m.doScan(), m.spinner.Tick)
	case "s":
		m.sortBy = (m.sortBy + 1) % 3
		m.sortEntries()
		m.rebuildFiltered()
	case "p":
		m.paused = !m.paused
	case "/":
		m.currentView = viewFilter
		m.searchQuery = ""
	case "esc":
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.rebuildFiltered()
		}
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.currentView = viewTable
	case "K":
		if m.detailEntry != nil {
			m.killEntry = m.detailEntry
			m.currentView = viewKillConfirm
		}
	}
	return m, nil
}

func (m Model) updateKillConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		if m.killEntry != nil {
			e := m.killEntry
			return m, m.doKill(e.PID, shortCommand(e.Command), e.Port)
		}
	case "n", "esc", "N":
		m.currentView = viewTable
		m.killEntry = nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateKillResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "enter", "backspace":
		m.currentView = viewTable
		m.killEntry = nil
		m.killResult = ""
		m.killErr = nil
		// Refresh after kill.
		m.scanning = true
		return m, tea.Batch(m.doScan(), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.currentView = viewTable
		m.rebuildFiltered()
	case "esc":
		m.currentView = viewTable
		m.searchQuery = ""
		m.rebuildFiltered()
	case "backspace":
		if len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
			m.rebuildFiltered()
		}
	default:
		key := msg.String()
		if len(key) == 1 {
			m.searchQuery += key
			m.rebuildFiltered()
		}
	}
	return m, nil
}

func (m *Model) selectedEntry() *port.PortEntry {
	if len(m.filtered) == 0 || m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	idx := m.filtered[m.cursor]
	if idx >= len(m.entries) {
		return nil
	}
	entry := m.entries[idx]
	return &entry
}

func (m *Model) sortEntries() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		switch m.sortBy {
		case sortByPID:
			return m.entries[i].PID < m.entries[j].PID
		case sortByCommand:
			return strings.ToLower(m.entries[i].Command) < strings.ToLower(m.entries[j].Command)
		default:
			return m.entries[i].Port < m.entries[j].Port
		}
	})
}

func (m *Model) rebuildFiltered() {
	m.filtered = m.filtered[:0]
	query := strings.ToLower(m.searchQuery)
	for i, e := range m.entries {
		if query != "" {
			match := strings.Contains(strings.ToLower(e.Command), query) ||
				strings.Contains(strings.ToLower(e.Directory), query) ||
				strings.Contains(fmt.Sprintf("%d", e.Port), query) ||
				strings.Contains(fmt.Sprintf("%d", e.PID), query)
			if !match {
				continue
			}
		}
		m.filtered = append(m.filtered, i)
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.adjustScroll()
}

func (m *Model) ensureCursorVisible() {
	visible := m.visibleRows()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

func (m *Model) adjustScroll() {
	visible := m.visibleRows()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	maxOffset := len(m.filtered) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m Model) visibleRows() int {
	// Reserve lines for: header (2), column headers (1), separator (1), status bar (2), help (1) = 7.
	const reserved = 7
	visible := m.height - reserved
	if visible < 1 {
		visible = 1
	}
	return visible
}

// View renders the TUI.
func (m Model) View() string {
	switch m.currentView {
	case viewDetail:
		return m.viewDetail()
	case viewKillConfirm:
		return m.viewKillConfirm()
	case viewKillResult:
		return m.viewKillResult()
	case viewFilter:
		return m.viewFilter()
	default:
		return m.viewTable()
	}
}

func (m Model) viewTable() string {
	var b strings.Builder

	// Header bar.
	title := titleStyle.Render(fmt.Sprintf("portscope %s", m.version))
	stats := dimStyle.Render(fmt.Sprintf("Listening: %d", len(m.entries)))
	pauseIndicator := ""
	if m.paused {
		pauseIndicator = warnStyle.Render("  [PAUSED]")
	}
	b.WriteString(title + "  " + stats + pauseIndicator + "\n")

	if m.scanning && len(m.entries) == 0 {
		b.WriteString("\n" + m.spinner.View() + " Scanning ports...\n")
		return b.String()
	}

	if m.scanErr != nil && len(m.entries) == 0 {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Scan failed: %v", m.scanErr)) + "\n")
		b.WriteString(helpStyle.Render("r:retry  q:quit") + "\n")
		return b.String()
	}

	// Column headers.
	sortIndicator := func(field sortField) string {
		if m.sortBy == field {
			return " ^"
		}
		return ""
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"  %-7s %-6s %-7s %-24s %-28s %s",
		"PORT"+sortIndicator(sortByPort),
		"PROTO",
		"PID"+sortIndicator(sortByPID),
		"COMMAND"+sortIndicator(sortByCommand),
		"DIRECTORY",
		"PARENT",
	)) + "\n")

	if len(m.filtered) == 0 {
		if m.searchQuery != "" {
			b.WriteString("\n  No results matching: " + m.searchQuery + "\n")
		} else {
			b.WriteString("\n  No listening ports found.\n")
		}
	} else {
		viewportRows := m.visibleRows()
		end := m.scrollOffset + viewportRows
		if end > len(m.filtered) {
			end = len(m.filtered)
		}

		for i := m.scrollOffset; i < end; i++ {
			idx := m.filtered[i]
			e := m.entries[idx]

			cursor := "  "
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
			}

			parent := "-"
			if e.ParentPID > 0 {
				parent = fmt.Sprintf("%d", e.ParentPID)
				if e.ParentCommand != "" {
					parent += " " + truncate(shortCommand(e.ParentCommand), 18)
				}
			}

			style := rowStyle(e.Directory, e.ParentPID)
			line := fmt.Sprintf("%-7d %-6s %-7d %-24s %-28s %s",
				e.Port, e.Protocol, e.PID,
				truncate(shortCommand(e.Command), 24),
				truncate(e.Directory, 28),
				parent,
			)

			b.WriteString(cursor + style.Render(line) + "\n")
		}

		// Scroll indicator.
		if len(m.filtered) > viewportRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  [%d-%d of %d]",
				m.scrollOffset+1, end, len(m.filtered))) + "\n")
		}
	}

	// Search indicator.
	if m.searchQuery != "" {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("  filter: %s", m.searchQuery)))
	}

	// Help bar.
	b.WriteString(helpStyle.Render("j/k:navigate  K:kill  i:detail  r:refresh  s:sort  p:pause  /:search  q:quit") + "\n")

	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("portscope -- Port Detail") + "\n\n")

	if m.detailEntry == nil {
		b.WriteString("  No port selected.\n")
		b.WriteString(helpStyle.Render("\nesc back | q quit") + "\n")
		return b.String()
	}

	e := m.detailEntry
	b.WriteString(labelStyle.Render("Port:") + valueStyle.Render(fmt.Sprintf("%d/%s", e.Port, e.Protocol)) + "\n")
	b.WriteString(labelStyle.Render("PID:") + valueStyle.Render(fmt.Sprintf("%d", e.PID)) + "\n")
	b.WriteString(labelStyle.Render("Command:") + valueStyle.Render(e.Command) + "\n")
	b.WriteString(labelStyle.Render("Directory:") + valueStyle.Render(e.Directory) + "\n")

	if e.ParentPID > 0 {
		b.WriteString(labelStyle.Render("Parent PID:") + valueStyle.Render(fmt.Sprintf("%d", e.ParentPID)) + "\n")
		if e.ParentCommand != "" {
			b.WriteString(labelStyle.Render("Parent:") + valueStyle.Render(e.ParentCommand) + "\n")
		}
	}

	b.WriteString(helpStyle.Render("\nK:kill  esc:back  q:quit") + "\n")
	return b.String()
}

func (m Model) viewKillConfirm() string {
	var b strings.Builder

	b.WriteString(dangerStyle.Render(" KILL PROCESS ") + "\n\n")

	if m.killEntry == nil {
		b.WriteString("  No process selected.\n")
		b.WriteString(helpStyle.Render("\nesc cancel | q quit") + "\n")
		return b.String()
	}

	e := m.killEntry
	b.WriteString(fmt.Sprintf("  Kill process %q (PID %d) on port %d?\n\n",
		shortCommand(e.Command), e.PID, e.Port))
	b.WriteString("  " + dimStyle.Render("The process is asked to exit gracefully and force-killed") + "\n")
	b.WriteString("  " + dimStyle.Render("only if it has not exited within the graceful timeout.") + "\n\n")

	b.WriteString(helpStyle.Render("y:kill  n/esc:cancel") + "\n")
	return b.String()
}

func (m Model) viewKillResult() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("portscope -- Kill Result") + "\n\n")

	if m.killErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Failed: %v", m.killErr)) + "\n")
	} else {
		b.WriteString(successStyle.Render(fmt.Sprintf("  %s", m.killResult)) + "\n")
	}

	b.WriteString(helpStyle.Render("\nenter/esc:back  q:quit") + "\n")
	return b.String()
}

func (m Model) viewFilter() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("portscope -- Search") + "\n\n")
	b.WriteString("  Type to filter: " + m.searchQuery + "_\n")
	b.WriteString(helpStyle.Render("\nenter:apply  esc:cancel") + "\n")

	return b.String()
}

// shortCommand returns the first token of a command line, without its
// directory prefix.
func shortCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	parts := strings.Split(fields[0], "/")
	return parts[len(parts)-1]
}

// truncate truncates a string to max length, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
