package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/AlverezYari/camdeck/pkg/camera"
)

// Publisher encodes frames off the UI goroutine and broadcasts them. It keeps only
// the newest pending frame: when encoding falls behind, older frames are dropped.
type Publisher struct {
	srv     *Server
	quality int

	mu      sync.Mutex
	cond    *sync.Cond
	pending *camera.Frame
	closed  bool
	done    chan struct{}

	drops atomic.Uint64
}

func NewPublisher(srv *Server, quality int) *Publisher {
	p := newPublisher(srv, quality)
	go p.loop()
	return p
}

func newPublisher(srv *Server, quality int) *Publisher {
	p := &Publisher{
		srv:     srv,
		quality: quality,
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Offer hands a frame to the encoder without blocking.
func (p *Publisher) Offer(frame camera.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.pending != nil {
		p.drops.Add(1)
	}
	p.pending = &frame
	p.cond.Signal()
}

// Drops is the number of frames replaced before they were encoded.
func (p *Publisher) Drops() uint64 {
	return p.drops.Load()
}

// Close stops the encoder after the frame in progress.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	p.pending = nil
	p.cond.Signal()
	p.mu.Unlock()
	<-p.done
}

func (p *Publisher) loop() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for p.pending == nil && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		frame := *p.pending
		p.pending = nil
		p.mu.Unlock()

		data, err := frame.JPEG(p.quality)
		if err != nil {
			p.srv.addLog("ERROR", fmt.Sprintf("Failed to encode frame: %v", err))
			continue
		}
		p.srv.BroadcastFrame(data)
	}
}
