// internal/server/server.go
package server

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

//go:embed web/index.html
var indexHTML []byte

const (
	maxLogEntries = 100
	writeTimeout  = 2 * time.Second
	mjpegPoll     = 30 * time.Millisecond
)

type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// Server is the browser-side video surface: it republishes whatever frame the
// viewer last broadcast over websocket and MJPEG.
type Server struct {
	addr        string
	router      *gin.Engine
	logCallback func(level, message string) // Callback for forwarding logs

	mu        sync.Mutex
	server    *http.Server
	listener  net.Listener
	cancel    context.CancelFunc // ends streaming requests on Stop
	isRunning bool

	logBuffer []LogEntry
	logMutex  sync.RWMutex

	upgrader        websocket.Upgrader
	wsConnections   map[*websocket.Conn]bool
	wsConnectionsMu sync.Mutex

	frameMu   sync.RWMutex
	latest    []byte
	frames    uint64
	lastFrame time.Time
}

func New(addr string, logCallback func(level, message string)) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:        addr,
		logBuffer:   make([]LogEntry, 0, maxLogEntries),
		logCallback: logCallback,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		wsConnections: make(map[*websocket.Conn]bool),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.GET("/", s.handleIndex)
	router.GET("/ws/camera", s.handleWebSocketCamera)
	router.GET("/stream.mjpg", s.handleMJPEG)
	router.GET("/api/status", s.handleStatus)
	s.router = router

	return s
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		s.addLog("ERROR", fmt.Sprintf("Server is already running on %s", s.addr))
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.addLog("ERROR", fmt.Sprintf("Error listening on %s: %v", s.addr, err))
		return fmt.Errorf("error listening on %s: %w", s.addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.listener = ln
	s.cancel = cancel
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.addLog("ERROR", fmt.Sprintf("HTTP server error: %v", err))
		}
	}(s.server)

	s.isRunning = true
	s.addLog("INFO", fmt.Sprintf("Preview server is running on http://%s", ln.Addr()))
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return fmt.Errorf("server is not running")
	}

	s.addLog("INFO", "Stopping server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.cancel()
	s.closeConnections()
	if err := s.server.Shutdown(ctx); err != nil {
		s.addLog("ERROR", fmt.Sprintf("Server shutdown error: %v", err))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.isRunning = false
	s.listener = nil
	s.addLog("INFO", "Server stopped")
	return nil
}

func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Addr returns the bound address while running, the configured one otherwise.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) ClientCount() int {
	s.wsConnectionsMu.Lock()
	defer s.wsConnectionsMu.Unlock()
	return len(s.wsConnections)
}

// BroadcastFrame publishes one JPEG frame to every websocket client and keeps it
// as the latest frame for MJPEG readers.
func (s *Server) BroadcastFrame(frameBytes []byte) {
	s.frameMu.Lock()
	s.latest = frameBytes
	s.frames++
	s.lastFrame = time.Now()
	s.frameMu.Unlock()

	s.wsConnectionsMu.Lock()
	defer s.wsConnectionsMu.Unlock()
	for conn := range s.wsConnections {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.BinaryMessage, frameBytes); err != nil {
			s.addLog("ERROR", fmt.Sprintf("Error writing frame to websocket: %v", err))
			conn.Close()
			delete(s.wsConnections, conn)
		}
	}
}

// ClearFrame drops the latest frame when the stream stops.
func (s *Server) ClearFrame() {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.latest = nil
}

func (s *Server) latestFrame() ([]byte, uint64) {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return s.latest, s.frames
}

// GetRecentLogs returns up to n of the newest log entries, oldest first.
func (s *Server) GetRecentLogs(n int) []LogEntry {
	s.logMutex.RLock()
	defer s.logMutex.RUnlock()

	if n > len(s.logBuffer) {
		n = len(s.logBuffer)
	}
	logs := make([]LogEntry, n)
	copy(logs, s.logBuffer[len(s.logBuffer)-n:])
	return logs
}

func (s *Server) closeConnections() {
	s.wsConnectionsMu.Lock()
	defer s.wsConnectionsMu.Unlock()
	for conn := range s.wsConnections {
		conn.Close()
		delete(s.wsConnections, conn)
	}
}

func (s *Server) addLog(level, message string) {
	logEntry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   fmt.Sprintf("[%s] %s", level, message),
	}

	s.logMutex.Lock()
	s.logBuffer = append(s.logBuffer, logEntry)
	if len(s.logBuffer) > maxLogEntries {
		s.logBuffer = s.logBuffer[1:]
	}
	s.logMutex.Unlock()

	switch level {
	case "ERROR":
		slog.Error(message, "component", "server")
	case "DEBUG":
		slog.Debug(message, "component", "server")
	default:
		slog.Info(message, "component", "server")
	}

	if s.logCallback != nil {
		s.logCallback(level, message)
	}
}
