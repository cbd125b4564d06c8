// internal/tui/model.go
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlverezYari/camdeck/internal/config"
	"github.com/AlverezYari/camdeck/internal/server"
	"github.com/AlverezYari/camdeck/pkg/camera"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type tabType int

const (
	cameraTab tabType = iota
	logsTab
)

type tab struct {
	title string
	id    tabType
}

type mode int

const (
	modeBrowse mode = iota
	modeAddCamera
	modeConfirmDelete
)

// Logging Setup

type Verbosity int

const (
	VerbosityError Verbosity = iota
	VerbosityInfo
	VerbosityDebug
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityError:
		return "error"
	case VerbosityDebug:
		return "debug"
	default:
		return "info"
	}
}

const (
	maxLogLines = 1000
	scanLimit   = 5
)

// Msg types
type tickMsg time.Time

type logMsg struct {
	level   string
	message string
}

type sessionStartedMsg struct {
	session *camera.Session
	entry   camera.Entry
	index   int
	err     error
}

type sessionEventMsg struct {
	session *camera.Session
	event   camera.Event
}

type sessionClosedMsg struct {
	session *camera.Session
}

type streamStoppedMsg struct{}

type serverStartedMsg struct {
	err error
}

type scanResultMsg struct {
	devices []int
}

// Deps are the collaborators the shell drives.
type Deps struct {
	Registry *camera.Registry
	Viewer   *camera.Viewer
	Opener   camera.Opener
}

// Model holds our application state
type Model struct {
	config   *config.AppConfig
	registry *camera.Registry
	viewer   *camera.Viewer
	opener   camera.Opener

	server    *server.Server
	publisher *server.Publisher
	logCh     chan logMsg

	width       int
	height      int
	status      string
	currentTime time.Time
	activeTab   tabType
	tabs        []tab
	mode        mode
	dialog      addDialog
	cursor      int

	session    *camera.Session
	streamID   string
	streamName string
	frame      *camera.Frame
	videoText  string
	fps        float64
	fpsCount   int
	fpsSince   time.Time

	logViewport viewport.Model
	logs        []string
	verbosity   Verbosity
}

// New returns a Model with initial state. The preview server is created but only
// started by Init.
func New(cfg *config.AppConfig, deps Deps) Model {
	now := time.Now()

	m := Model{
		config:      cfg,
		registry:    deps.Registry,
		viewer:      deps.Viewer,
		opener:      deps.Opener,
		logCh:       make(chan logMsg, 256),
		status:      "No camera selected",
		currentTime: now,
		activeTab:   cameraTab,
		tabs: []tab{
			{title: "Cameras", id: cameraTab},
			{title: "Logs", id: logsTab},
		},
		videoText: "Video not running",
		logViewport: func() viewport.Model {
			vp := viewport.New(0, 10)
			vp.MouseWheelEnabled = true
			return vp
		}(),
		logs:      make([]string, 0),
		verbosity: VerbosityInfo,
	}

	if cfg.PreviewEnabled {
		m.server = server.New(cfg.ServerAddress(), m.logCallback)
		m.publisher = server.NewPublisher(m.server, cfg.JPEGQuality)
	}

	return m
}

// Init runs any initial IO
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{timeTickCmd(), waitForLog(m.logCh)}
	if m.server != nil {
		cmds = append(cmds, startServerCmd(m.server))
	}
	return tea.Batch(cmds...)
}

// logCallback is called from server goroutines; it must not touch the model.
func (m Model) logCallback(level string, message string) {
	select {
	case m.logCh <- logMsg{level: level, message: message}:
	default:
	}
}

func (m *Model) addLog(level, message string) {
	if !m.shouldShowLog(level) {
		return
	}
	logEntry := fmt.Sprintf("%s [%s] %s", time.Now().Format("15:04:05"), level, message)
	m.logs = append(m.logs, logEntry)

	// Cap log buffer size
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[1:]
	}

	m.logViewport.SetContent(strings.Join(m.logs, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) shouldShowLog(level string) bool {
	switch m.verbosity {
	case VerbosityDebug:
		return true
	case VerbosityInfo:
		return level != "DEBUG"
	case VerbosityError:
		return level == "ERROR"
	default:
		return false
	}
}

// resetVideo returns the surface to its placeholder.
func (m *Model) resetVideo(text string) {
	m.session = nil
	m.streamID = ""
	m.streamName = ""
	m.frame = nil
	m.fps = 0
	m.fpsCount = 0
	m.videoText = text
	if m.server != nil {
		m.server.ClearFrame()
	}
}

func (m *Model) countFrame(at time.Time) {
	if m.fpsSince.IsZero() {
		m.fpsSince = at
	}
	m.fpsCount++
	if elapsed := at.Sub(m.fpsSince); elapsed >= time.Second {
		m.fps = float64(m.fpsCount) / elapsed.Seconds()
		m.fpsCount = 0
		m.fpsSince = at
	}
}

// Helper command for time updates
func timeTickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForLog(ch <-chan logMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func startServerCmd(srv *server.Server) tea.Cmd {
	return func() tea.Msg {
		return serverStartedMsg{err: srv.Start()}
	}
}

func startStreamCmd(viewer *camera.Viewer, entry camera.Entry, index int) tea.Cmd {
	return func() tea.Msg {
		s, err := viewer.Start(entry.Source)
		return sessionStartedMsg{session: s, entry: entry, index: index, err: err}
	}
}

func stopStreamCmd(viewer *camera.Viewer) tea.Cmd {
	return func() tea.Msg {
		viewer.Stop()
		return streamStoppedMsg{}
	}
}

// waitForEvent delivers the next event of s, or sessionClosedMsg once it is done.
func waitForEvent(s *camera.Session) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return sessionClosedMsg{session: s}
		}
		return sessionEventMsg{session: s, event: ev}
	}
}

// scanCmd probes for devices not already listed; known indices are never reopened,
// which keeps a live handle undisturbed.
func scanCmd(open camera.Opener, known []int) tea.Cmd {
	return func() tea.Msg {
		return scanResultMsg{devices: camera.ScanDevices(open, scanLimit, known...)}
	}
}
