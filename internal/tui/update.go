// internal/tui/update.go
package tui

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/AlverezYari/camdeck/pkg/camera"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width
		m.logViewport.Height = max(msg.Height-6, 3)
		return m, nil

	case tickMsg:
		m.currentTime = time.Time(msg)
		return m, timeTickCmd()

	case logMsg:
		m.addLog(msg.level, msg.message)
		return m, waitForLog(m.logCh)

	case serverStartedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Preview server error: %v", msg.err)
		}
		return m, nil

	case sessionStartedMsg:
		return m.handleSessionStarted(msg)

	case sessionEventMsg:
		if msg.session != m.session {
			return m, nil
		}
		return m.handleSessionEvent(msg.event)

	case sessionClosedMsg:
		if msg.session == m.session {
			m.resetVideo("Video stopped")
		}
		return m, nil

	case streamStoppedMsg:
		return m, nil

	case scanResultMsg:
		return m.handleScanResult(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeAddCamera:
			return m.updateAddDialog(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.mode == modeAddCamera {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.shutdown()
		return m, tea.Quit

	case "tab":
		// Cycle through tabs
		m.activeTab = (m.activeTab + 1) % tabType(len(m.tabs))
	case "1":
		m.activeTab = cameraTab
	case "2":
		m.activeTab = logsTab

	case "v":
		m.verbosity = (m.verbosity + 1) % (VerbosityDebug + 1)
		m.status = fmt.Sprintf("Log verbosity: %s", m.verbosity)
	}

	if m.activeTab == logsTab {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.selected()
		}

	case "down", "j":
		if m.cursor < m.registry.Len()-1 {
			m.cursor++
			m.selected()
		}

	case "enter":
		entry, err := m.registry.Get(m.cursor)
		if err != nil {
			return m, nil
		}
		m.status = fmt.Sprintf("Opening %s...", entry.Name)
		return m, startStreamCmd(m.viewer, entry, m.cursor)

	case "s":
		return m.stopStream("Stream stopped")

	case "a":
		m.mode = modeAddCamera
		m.dialog = newAddDialog()
		return m, textinput.Blink

	case "d", "delete":
		if m.registry.Len() > 0 {
			m.mode = modeConfirmDelete
		}

	case "c":
		m.status = "Scanning for cameras..."
		return m, scanCmd(m.opener, m.knownDevices())
	}
	return m, nil
}

func (m Model) updateAddDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "tab", "shift+tab", "up", "down":
		m.dialog.toggleFocus()
		return m, nil

	case "enter":
		m.mode = modeBrowse
		name, text := m.dialog.values()
		if name == "" || text == "" {
			m.status = "Camera not added: name and source are required"
			return m, nil
		}
		source, err := camera.ParseSource(text)
		if err != nil {
			m.status = fmt.Sprintf("Camera not added: %v", err)
			return m, nil
		}
		index := m.registry.Add(name, source)
		m.addLog("INFO", fmt.Sprintf("Added camera %q (%s)", name, source))
		m.cursor = index
		m.status = fmt.Sprintf("Added: %s", name)
		return m, nil
	}

	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeBrowse
		entry, err := m.registry.Get(m.cursor)
		if err != nil {
			return m, nil
		}
		if err := m.registry.Remove(m.cursor); err != nil {
			m.status = fmt.Sprintf("Error removing camera: %v", err)
			return m, nil
		}
		m.addLog("INFO", fmt.Sprintf("Removed camera %q", entry.Name))
		if m.cursor >= m.registry.Len() && m.cursor > 0 {
			m.cursor--
		}
		return m.stopStream("Camera removed")

	case "n", "N", "esc":
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model) handleSessionStarted(msg sessionStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.addLog("ERROR", msg.err.Error())
		cause := msg.err
		var openErr *camera.OpenError
		if errors.As(msg.err, &openErr) {
			cause = openErr.Err
		}
		m.resetVideo("Video not running")
		m.status = fmt.Sprintf("Could not open %s: %v", msg.entry.Name, cause)
		return m, nil
	}

	// A later start already replaced this session.
	if msg.session != m.viewer.Current() {
		return m, nil
	}

	m.resetVideo("Waiting for frames...")
	m.session = msg.session
	m.streamID = msg.entry.ID
	m.streamName = msg.entry.Name
	m.fpsSince = time.Time{}
	m.status = fmt.Sprintf("Stream started (camera %d)", msg.index)
	m.addLog("INFO", fmt.Sprintf("Streaming %q from %s", msg.entry.Name, msg.session.Source()))
	return m, waitForEvent(msg.session)
}

func (m Model) handleSessionEvent(ev camera.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case camera.FrameDelivered:
		frame := ev.Frame
		m.frame = &frame
		m.countFrame(frame.At)
		if m.publisher != nil {
			m.publisher.Offer(frame)
		}
		return m, waitForEvent(m.session)

	case camera.StreamEnded:
		m.addLog("INFO", fmt.Sprintf("Stream %q ended", m.streamName))
		m.resetVideo("Video stopped")
		m.status = "Stream ended"

	case camera.DeviceFailed:
		m.addLog("ERROR", fmt.Sprintf("Stream %q failed: %v", m.streamName, ev.Err))
		m.resetVideo("Video stopped")
		m.status = fmt.Sprintf("Camera error: %v", ev.Err)
	}
	return m, nil
}

func (m Model) handleScanResult(msg scanResultMsg) (tea.Model, tea.Cmd) {
	added := 0
	for _, index := range msg.devices {
		if m.hasDevice(index) {
			continue
		}
		m.registry.Add(fmt.Sprintf("Camera %d", index), camera.DeviceSource(index))
		added++
	}
	m.status = fmt.Sprintf("Found %d new camera(s)", added)
	return m, nil
}

func (m Model) stopStream(status string) (tea.Model, tea.Cmd) {
	m.resetVideo("Video stopped")
	m.status = status
	return m, stopStreamCmd(m.viewer)
}

func (m *Model) selected() {
	if entry, err := m.registry.Get(m.cursor); err == nil {
		m.status = fmt.Sprintf("Selected: %s", entry.Name)
	}
}

func (m Model) hasDevice(index int) bool {
	return slices.Contains(m.knownDevices(), index)
}

// knownDevices lists the device indices already in the registry.
func (m Model) knownDevices() []int {
	var devices []int
	for i := 0; i < m.registry.Len(); i++ {
		entry, _ := m.registry.Get(i)
		if d, ok := entry.Source.Device(); ok {
			devices = append(devices, d)
		}
	}
	return devices
}

// shutdown releases the capture handle and the preview server before exit.
func (m *Model) shutdown() {
	m.viewer.Stop()
	if m.publisher != nil {
		m.publisher.Close()
	}
	if m.server != nil && m.server.IsRunning() {
		m.server.Stop()
	}
}
