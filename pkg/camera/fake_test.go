package camera

import (
	"errors"
	"io"
	"sync"
	"time"
)

// fakeCapturer serves a fixed number of 2x2 frames, then returns err.
type fakeCapturer struct {
	dev    *fakeDevices
	frames int
	err    error

	mu     sync.Mutex
	reads  int
	closed bool
}

func (c *fakeCapturer) Read() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frames >= 0 && c.reads >= c.frames {
		return Frame{}, c.err
	}
	c.reads++
	return Frame{
		Width:  2,
		Height: 2,
		Stride: 6,
		Pix:    []byte{byte(c.reads), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		At:     time.Now(),
	}, nil
}

func (c *fakeCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed twice")
	}
	c.closed = true
	c.dev.release()
	return nil
}

// fakeDevices is an Opener that tracks how many handles are open at once.
type fakeDevices struct {
	frames int   // frames per handle, -1 for endless
	err    error // error after the last frame
	fail   map[string]error

	mu        sync.Mutex
	opened    int
	open      int
	maxOpen   int
	capturers []*fakeCapturer
}

func newFakeDevices(frames int) *fakeDevices {
	return &fakeDevices{frames: frames, err: io.EOF, fail: map[string]error{}}
}

func (d *fakeDevices) Open(source Source) (Capturer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.fail[source.String()]; ok {
		return nil, err
	}
	d.opened++
	d.open++
	if d.open > d.maxOpen {
		d.maxOpen = d.open
	}
	c := &fakeCapturer{dev: d, frames: d.frames, err: d.err}
	d.capturers = append(d.capturers, c)
	return c, nil
}

func (d *fakeDevices) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open--
}

func (d *fakeDevices) counts() (opened, open, maxOpen int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened, d.open, d.maxOpen
}
