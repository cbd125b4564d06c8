package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) record(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+message)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_StartStop(t *testing.T) {
	logs := &logRecorder{}
	srv := New("127.0.0.1:0", logs.record)

	if err := srv.Stop(); err == nil {
		t.Error("Expected error stopping a server that is not running")
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !srv.IsRunning() {
		t.Error("Expected server running")
	}
	if err := srv.Start(); err == nil {
		t.Error("Expected error starting twice")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if srv.IsRunning() {
		t.Error("Expected server stopped")
	}

	logs.mu.Lock()
	defer logs.mu.Unlock()
	if len(logs.lines) == 0 {
		t.Error("Expected log callback to be invoked")
	}
}

func TestServer_WebSocketBroadcast(t *testing.T) {
	srv := New("127.0.0.1:0", nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/camera"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return srv.ClientCount() == 1 })

	frame := []byte{0xFF, 0xD8, 1, 2, 3, 0xFF, 0xD9}
	srv.BroadcastFrame(frame)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Errorf("Expected binary message, got %d", kind)
	}
	if !bytes.Equal(data, frame) {
		t.Errorf("Expected frame %v, got %v", frame, data)
	}

	conn.Close()
	waitFor(t, func() bool { return srv.ClientCount() == 0 })
}

func TestServer_Status(t *testing.T) {
	srv := New("127.0.0.1:0", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var before statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &before); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if before.Running || before.Frames != 0 || before.LastFrame != nil {
		t.Errorf("Unexpected idle status %+v", before)
	}

	srv.BroadcastFrame([]byte{1})
	srv.BroadcastFrame([]byte{2})

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var after statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !after.Running || after.Frames != 2 || after.LastFrame == nil {
		t.Errorf("Unexpected streaming status %+v", after)
	}

	srv.ClearFrame()
	if frame, _ := srv.latestFrame(); frame != nil {
		t.Error("Expected latest frame cleared")
	}
}

func TestServer_MJPEG(t *testing.T) {
	srv := New("127.0.0.1:0", nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	srv.BroadcastFrame([]byte("jpegdata"))

	resp, err := http.Get(ts.URL + "/stream.mjpg")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Unexpected content type %q", ct)
	}

	buf := make([]byte, 0, 256)
	chunk := make([]byte, 64)
	for !bytes.Contains(buf, []byte("jpegdata")) {
		n, err := resp.Body.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			t.Fatalf("Read failed before frame arrived: %v (got %q)", err, buf)
		}
	}
	if !bytes.Contains(buf, []byte("--frame")) {
		t.Errorf("Expected multipart boundary, got %q", buf)
	}
}

func TestServer_GetRecentLogs(t *testing.T) {
	srv := New("127.0.0.1:0", nil)
	for i := 0; i < maxLogEntries+10; i++ {
		srv.addLog("INFO", "line")
	}
	srv.addLog("ERROR", "last")

	if got := len(srv.GetRecentLogs(1000)); got != maxLogEntries {
		t.Errorf("Expected buffer capped at %d, got %d", maxLogEntries, got)
	}
	recent := srv.GetRecentLogs(2)
	if len(recent) != 2 || recent[1].Message != "[ERROR] last" || recent[1].Level != "ERROR" {
		t.Errorf("Unexpected recent logs %+v", recent)
	}
}
