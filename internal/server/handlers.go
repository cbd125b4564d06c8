package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type statusResponse struct {
	Running   bool       `json:"running"`
	Clients   int        `json:"clients"`
	Frames    uint64     `json:"frames"`
	LastFrame *time.Time `json:"last_frame,omitempty"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleStatus(c *gin.Context) {
	s.frameMu.RLock()
	resp := statusResponse{
		Running: s.latest != nil,
		Frames:  s.frames,
	}
	if !s.lastFrame.IsZero() {
		last := s.lastFrame
		resp.LastFrame = &last
	}
	s.frameMu.RUnlock()

	resp.Clients = s.ClientCount()
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleWebSocketCamera(c *gin.Context) {
	r := c.Request
	s.addLog("INFO", fmt.Sprintf("Websocket connection attempt from: %s", r.RemoteAddr))
	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		s.addLog("ERROR", fmt.Sprintf("Error upgrading websocket connection: %v", err))
		return
	}

	s.wsConnectionsMu.Lock()
	s.wsConnections[conn] = true
	s.wsConnectionsMu.Unlock()

	defer func() {
		s.wsConnectionsMu.Lock()
		if s.wsConnections[conn] {
			conn.Close()
			delete(s.wsConnections, conn)
		}
		s.wsConnectionsMu.Unlock()
		s.addLog("INFO", fmt.Sprintf("Websocket connection closed: %s", r.RemoteAddr))
	}()

	// Clients never send; reading only notices when they go away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleMJPEG(c *gin.Context) {
	c.Header("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "Streaming not supported")
		return
	}

	ticker := time.NewTicker(mjpegPoll)
	defer ticker.Stop()

	var sent uint64
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			frame, seq := s.latestFrame()
			if frame == nil || seq == sent {
				continue
			}
			sent = seq

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
			if _, err := w.Write(frame); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")
			flusher.Flush()
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.addLog("DEBUG", fmt.Sprintf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start)))
	}
}
