// internal/tui/view.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 28

// Palette
var (
	colorBackground = lipgloss.Color("#202225")
	colorPanel      = lipgloss.Color("#2f3136")
	colorSurface    = lipgloss.Color("#18191c")
	colorText       = lipgloss.Color("#dcddde")
	colorMuted      = lipgloss.Color("#b9bbbe")
	colorFaint      = lipgloss.Color("#72767d")
	colorAccent     = lipgloss.Color("#5865f2")
	colorSelected   = lipgloss.Color("#40444b")
	colorDanger     = lipgloss.Color("#ed4245")
)

// Style definitions
var (
	headerStyle = lipgloss.NewStyle().
			Background(colorBackground).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorBackground).
			Foreground(colorMuted).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Background(colorPanel).
			Foreground(colorText).
			Width(sidebarWidth).
			Padding(0, 1)

	sidebarTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Bold(true)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(colorSelected).
				Foreground(lipgloss.Color("#ffffff"))

	liveMarkerStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	videoStyle = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorFaint).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBackground).
			Align(lipgloss.Center, lipgloss.Center)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(colorAccent).
			Foreground(lipgloss.Color("#ffffff"))

	dialogStyle = lipgloss.NewStyle().
			Background(colorPanel).
			Foreground(colorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Bold(true)

	primaryButtonStyle = lipgloss.NewStyle().
				Background(colorAccent).
				Foreground(lipgloss.Color("#ffffff")).
				Padding(0, 2)

	secondaryButtonStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#4f545c")).
				Foreground(colorText).
				Padding(0, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorFaint)
)

// View renders the UI
func (m Model) View() string {
	width := max(m.width, sidebarWidth+24)
	height := max(m.height, 12)

	timeStr := m.currentTime.Format("Mon Jan 2 15:04:05 2006")
	headerContent := lipgloss.JoinHorizontal(
		lipgloss.Center,
		"camdeck",
		lipgloss.NewStyle().
			Width(width-11).
			Align(lipgloss.Right).
			Render(timeStr),
	)
	header := headerStyle.Width(width).Render(headerContent)

	tabs := m.renderTabs()

	bodyHeight := height - 4
	var body string
	switch m.activeTab {
	case logsTab:
		body = m.logViewport.View()
	default:
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.renderSidebar(bodyHeight),
			m.renderVideo(width-sidebarWidth, bodyHeight),
		)
	}

	switch m.mode {
	case modeAddCamera:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderAddDialog())
	case modeConfirmDelete:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderConfirmDelete())
	}

	statusBar := statusBarStyle.Width(width).Render(
		fmt.Sprintf("%s | ↑/↓ select  enter start  s stop  a add  d delete  c scan  tab logs  q quit", m.status),
	)

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabs, body, statusBar)
}

// Helper function to render tabs
func (m Model) renderTabs() string {
	var renderedTabs []string

	for _, t := range m.tabs {
		style := tabStyle
		if t.id == m.activeTab {
			style = activeTabStyle
		}
		renderedTabs = append(renderedTabs, style.Render(t.title))
	}

	if m.server != nil && m.server.IsRunning() {
		renderedTabs = append(renderedTabs, hintStyle.Render(fmt.Sprintf("  preview: http://%s", m.server.Addr())))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderedTabs...,
	)
}

func (m Model) renderSidebar(height int) string {
	var content strings.Builder
	content.WriteString(sidebarTitleStyle.Render("Cameras"))
	content.WriteString("\n\n")

	items := m.registry.List()
	if len(items) == 0 {
		content.WriteString(hintStyle.Render("Press a to add a camera"))
	}
	for _, item := range items {
		name := item.Name
		if m.isStreaming(item.Index) {
			name = liveMarkerStyle.Render("● ") + name
		}
		style := itemStyle
		if item.Index == m.cursor {
			style = selectedItemStyle
		}
		content.WriteString(style.Width(sidebarWidth - 2).Render(name))
		content.WriteString("\n")
	}

	return sidebarStyle.Height(height).Render(content.String())
}

// isStreaming reports whether the entry at index is the one being shown.
func (m Model) isStreaming(index int) bool {
	if m.streamID == "" {
		return false
	}
	i, ok := m.registry.IndexOf(m.streamID)
	return ok && i == index
}

func (m Model) renderVideo(width, height int) string {
	innerWidth := max(width-2, 1)
	innerHeight := max(height-3, 1)

	var surface string
	if m.frame == nil {
		surface = m.videoText
	} else {
		surface = renderFrame(*m.frame, innerWidth, innerHeight)
	}

	video := videoStyle.
		Width(innerWidth).
		Height(innerHeight).
		Render(surface)

	info := hintStyle.Render(m.videoInfo())
	return lipgloss.JoinVertical(lipgloss.Left, info, video)
}

func (m Model) videoInfo() string {
	if m.session == nil {
		return ""
	}
	if m.frame == nil {
		return fmt.Sprintf("%s · connecting", m.streamName)
	}
	return fmt.Sprintf("%s · %dx%d · frame %d · %.1f fps",
		m.streamName, m.frame.Width, m.frame.Height, m.frame.Seq, m.fps)
}

func (m Model) renderAddDialog() string {
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Top,
		secondaryButtonStyle.Render("Cancel (esc)"),
		"  ",
		primaryButtonStyle.Render("Add (enter)"),
	)
	return dialogStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		dialogTitleStyle.Render("Add camera"),
		"",
		m.dialog.name.View(),
		m.dialog.source.View(),
		"",
		buttons,
	))
}

func (m Model) renderConfirmDelete() string {
	name := ""
	if entry, err := m.registry.Get(m.cursor); err == nil {
		name = entry.Name
	}
	return dialogStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		dialogTitleStyle.Render("Delete camera"),
		"",
		fmt.Sprintf("Delete camera '%s'?", name),
		"",
		hintStyle.Render("y: yes   n: no"),
	))
}
