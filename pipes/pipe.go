// Package pipes implements an unbounded in-memory byte pipe with one-way closure.
package pipes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	ErrClosed = fmt.Errorf("pipe: %w", io.ErrClosedPipe)
	ErrEmpty  = errors.New("pipe: empty")
)

// Pipe is safe for one reader and any number of writers. Writes never block.
type Pipe struct {
	mu          sync.Mutex
	buf         []byte
	writeClosed bool
	readClosed  bool
	waiters     int
	notify      chan struct{}
}

func New() *Pipe {
	return &Pipe{
		notify: make(chan struct{}),
	}
}

// must hold mu
func (p *Pipe) signal() {
	if p.waiters == 0 {
		return
	}
	close(p.notify)
	p.notify = make(chan struct{})
}

func (p *Pipe) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeClosed || p.readClosed {
		return 0, ErrClosed
	}
	p.buf = append(p.buf, data...)
	p.signal()
	return len(data), nil
}

func (p *Pipe) WriteByte(b byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeClosed || p.readClosed {
		return ErrClosed
	}
	p.buf = append(p.buf, b)
	p.signal()
	return nil
}

// ReadByteContext blocks until a byte is pending, the write side is closed
// and drained (io.EOF), the read side is closed (ErrClosed), or ctx is done.
func (p *Pipe) ReadByteContext(ctx context.Context) (byte, error) {
	for {
		p.mu.Lock()
		if p.readClosed {
			p.mu.Unlock()
			return 0, ErrClosed
		}
		if len(p.buf) > 0 {
			b := p.buf[0]
			p.take(1)
			p.mu.Unlock()
			return b, nil
		}
		if p.writeClosed {
			p.mu.Unlock()
			return 0, io.EOF
		}
		p.waiters++
		notify := p.notify
		p.mu.Unlock()

		var err error
		select {
		case <-notify:
		case <-ctx.Done():
			err = ctx.Err()
		}

		p.mu.Lock()
		p.waiters--
		p.mu.Unlock()
		if err != nil {
			return 0, err
		}
	}
}

// TryRead never blocks. It returns ErrEmpty when nothing is pending and the
// write side is open.
func (p *Pipe) TryRead(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readClosed {
		return 0, ErrClosed
	}
	if len(p.buf) > 0 {
		n := copy(buf, p.buf)
		p.take(n)
		return n, nil
	}
	if p.writeClosed {
		return 0, io.EOF
	}
	return 0, ErrEmpty
}

// must hold mu
func (p *Pipe) take(n int) {
	p.buf = p.buf[n:]
	if len(p.buf) == 0 {
		p.buf = nil
	}
}

// Len returns the number of pending bytes.
func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// CloseWrite marks the end of data. Pending bytes remain readable.
func (p *Pipe) CloseWrite() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeClosed = true
	p.signal()
}

// CloseRead discards pending bytes and refuses further writes.
func (p *Pipe) CloseRead() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readClosed = true
	p.buf = nil
	p.signal()
}
