package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/veilfs/veilfs/internal/mount"
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// StatusMsg is a [tea.Msg] containing [mount.Info] snapshots of all mounts.
type StatusMsg struct {
	t     time.Time
	infos []mount.Info
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	cancel func()

	uiHandler *Handler
	status    statusProvider

	fullWidthWithBorders  int
	splitWidthWithBorders int

	infos []mount.Info

	memoryProgress progress.Model
	logsViewport   viewport.Model
	logs           []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, status statusProvider, cancel func()) TeaModel {
	memoryProgress := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(80),
	)

	logsViewport := viewport.New(80, 20)

	return TeaModel{
		uiHandler:      uiHandler,
		status:         status,
		memoryProgress: memoryProgress,
		logsViewport:   logsViewport,
		logs:           make([]string, 0, 100),
		cancel:         cancel,
		ready:          false,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		updateStatus(m.status),
	)
}

// updateStatus produces a [tea.Cmd] for later scheduling in a [tea.Program].
// When executed, a [StatusMsg] with all current [mount.Info] is returned.
func updateStatus(status statusProvider) tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { //nolint:mnd
		return StatusMsg{
			t:     t,
			infos: status.Status(),
		}
	})
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.splitWidthWithBorders = (m.width / 3) - 2

		// The progress bar should match the content width.
		m.memoryProgress.Width = m.splitWidthWithBorders

		// Upper panels take about 40% of the height.
		upperHeight := m.height * 2 / 5
		lowerHeight := m.height - upperHeight

		// Viewport height: lower section minus borders and title.
		viewportHeight := lowerHeight - 3

		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = viewportHeight

		if len(m.logs) > 0 {
			logs := lipgloss.NewStyle().
				Width(m.logsViewport.Width).
				Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

			m.logsViewport.SetContent(logs)
			m.logsViewport.GotoBottom()
		}

		if !m.ready {
			m.ready = true
			m.uiHandler.Ready.Store(true)
		}

	case StatusMsg:
		m.infos = msg.infos

		cmds = append(cmds, m.memoryProgress.SetPercent(memoryFraction(m.infos)))

		// Queue the next update.
		cmds = append(cmds, updateStatus(m.status))

	case LogMsg:
		logMsg := string(msg)

		if len(m.logs) >= 100 {
			m.logs = m.logs[1:]
		}

		m.logs = append(m.logs, logMsg)

		logs := lipgloss.NewStyle().
			Width(m.logsViewport.Width).
			Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

		m.logsViewport.SetContent(logs)
		m.logsViewport.GotoBottom()

	case progress.FrameMsg:
		updatedMemory, cmd := m.memoryProgress.Update(msg)
		if progressModel, ok := updatedMemory.(progress.Model); ok {
			m.memoryProgress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	// Handle viewport updates.
	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// memoryFraction returns the aggregate override memory utilization across all
// capped mounts, as a fraction between 0 and 1. Uncapped mounts do not
// contribute.
func memoryFraction(infos []mount.Info) float64 {
	var usage, limit int64

	for _, info := range infos {
		if info.MaxBytes > 0 {
			usage += info.MemoryUsage
			limit += info.MaxBytes
		}
	}

	if limit <= 0 {
		return 0
	}

	fraction := float64(usage) / float64(limit)
	if fraction > 1 {
		fraction = 1
	}

	return fraction
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	var s strings.Builder

	mountsView := m.formatMountsView()
	overridesView := m.formatOverridesView()
	activityView := m.formatActivityView()

	statusSection := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(m.splitWidthWithBorders).Render(mountsView),
		borderStyle.Width(m.splitWidthWithBorders).Render(overridesView),
		borderStyle.Width(m.splitWidthWithBorders).Render(activityView),
	)

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Process Information"),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit gui • ctrl+c: quit program")

	s.WriteString(lipgloss.JoinVertical(
		lipgloss.Left,
		statusSection,
		logsSection,
		helpSection,
	))

	return s.String()
}

// formatMountsView renders the per-mount state panel.
func (m TeaModel) formatMountsView() string {
	var details strings.Builder

	if len(m.infos) == 0 {
		details.WriteString("No active mounts.\n")
	}

	for _, info := range m.infos {
		uptime := time.Duration(0)
		if !info.MountedAt.IsZero() {
			uptime = time.Since(info.MountedAt).Round(time.Second)
		}

		details.WriteString(fmt.Sprintf(
			"%s\n  Source: %s\n  Backend: %s, State: %s, Up: %v\n",
			info.MountPoint,
			info.Source,
			info.Backend,
			info.State,
			uptime,
		))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("Mounts"),
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details.String()),
	)
}

// formatOverridesView renders the override store panel, including the
// aggregate memory utilization bar.
func (m TeaModel) formatOverridesView() string {
	var files, dirs, tombstones int
	var usage, limit int64

	for _, info := range m.infos {
		files += info.Files
		dirs += info.Directories
		tombstones += info.Tombstones
		usage += info.MemoryUsage
		limit += info.MaxBytes
	}

	memoryLine := humanize.IBytes(uint64(usage))
	if limit > 0 {
		memoryLine += " of " + humanize.IBytes(uint64(limit))
	} else {
		memoryLine += " (unlimited)"
	}

	details := fmt.Sprintf(
		"Files: %d\nDirectories: %d\nTombstones: %d\nMemory: %s\n",
		files,
		dirs,
		tombstones,
		memoryLine,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("Overrides"),
		"", // Empty line for spacing.
		m.memoryProgress.View(),
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}

// formatActivityView renders the provider activity panel.
func (m TeaModel) formatActivityView() string {
	var ops, reads, writes, hits, passthroughs, bytesRead, bytesWritten uint64

	for _, info := range m.infos {
		ops += info.Provider.Ops()
		reads += info.Provider.Reads
		writes += info.Provider.Writes
		hits += info.Provider.OverrideHits
		passthroughs += info.Provider.Passthroughs
		bytesRead += info.Provider.BytesRead
		bytesWritten += info.Provider.BytesWritten
	}

	details := fmt.Sprintf(
		"Operations: %d (Reads=%d, Writes=%d)\n"+
			"Resolution: Overrides=%d, Passthrough=%d\n"+
			"Read: %s, Written: %s\n",
		ops,
		reads,
		writes,
		hits,
		passthroughs,
		humanize.IBytes(bytesRead),
		humanize.IBytes(bytesWritten),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("Activity"),
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}
