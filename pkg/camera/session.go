package camera

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the pause between reads. It does not follow the source frame rate.
const DefaultInterval = 30 * time.Millisecond

type EventKind int

const (
	FrameDelivered EventKind = iota
	StreamEnded
	DeviceFailed
)

func (k EventKind) String() string {
	switch k {
	case FrameDelivered:
		return "frame"
	case StreamEnded:
		return "ended"
	case DeviceFailed:
		return "device error"
	default:
		return "unknown"
	}
}

// Event is what a session delivers: a frame, or why the stream stopped on its own.
// Err is set for DeviceFailed.
type Event struct {
	Kind  EventKind
	Frame Frame
	Err   error
}

type Option func(*Session)

func WithInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithBuffer sets how many events may queue before the read loop waits for the consumer.
func WithBuffer(n int) Option {
	return func(s *Session) { s.buffer = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one open capture handle plus the goroutine reading it. A session is
// never restarted; start a new one instead.
type Session struct {
	source   Source
	interval time.Duration
	buffer   int
	logger   *slog.Logger

	capturer Capturer
	events   chan Event
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	frames   atomic.Uint64
}

// Start opens source and begins reading it in the background. An open failure is
// returned as *OpenError and leaves nothing running.
func Start(open Opener, source Source, opts ...Option) (*Session, error) {
	s := &Session{
		source:   source,
		interval: DefaultInterval,
		buffer:   1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	c, err := open(source)
	if err != nil {
		return nil, &OpenError{Source: source, Err: err}
	}

	s.capturer = c
	s.events = make(chan Event, s.buffer)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.logger = s.logger.With("source", source.String())

	go s.run()
	s.logger.Info("capture started", "interval", s.interval)
	return s, nil
}

// Events delivers frames in read order. It is closed once the loop has exited and
// the handle is released. A Stop call produces no terminal event.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed when the session has fully terminated.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Source() Source {
	return s.source
}

// Frames is the number of frames read so far.
func (s *Session) Frames() uint64 {
	return s.frames.Load()
}

// Stop asks the loop to exit and waits until it has and the handle is closed.
// A read in progress is not interrupted. Stop is idempotent and safe on nil.
func (s *Session) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Session) run() {
	defer close(s.done)
	defer close(s.events)
	defer s.release()

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		if s.stopped() {
			return
		}

		frame, err := s.capturer.Read()
		if err != nil {
			s.end(err)
			return
		}
		frame.Seq = s.frames.Add(1)
		if !s.send(Event{Kind: FrameDelivered, Frame: frame}) {
			return
		}

		timer.Reset(s.interval)
		select {
		case <-s.stop:
			return
		case <-timer.C:
		}
	}
}

func (s *Session) end(err error) {
	if s.stopped() {
		return
	}
	if errors.Is(err, io.EOF) {
		s.logger.Info("stream ended", "frames", s.Frames())
		s.send(Event{Kind: StreamEnded})
		return
	}
	s.logger.Warn("capture failed", "frames", s.Frames(), "error", err)
	s.send(Event{Kind: DeviceFailed, Err: err})
}

func (s *Session) send(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.stop:
		return false
	}
}

func (s *Session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *Session) release() {
	if err := s.capturer.Close(); err != nil {
		s.logger.Error("failed to release capture", "error", err)
		return
	}
	s.logger.Debug("capture released", "frames", s.Frames())
}
