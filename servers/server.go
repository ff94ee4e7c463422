package servers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/metrics"
	"github.com/reusee/taibf/schemes"
	"github.com/reusee/taibf/wires"
	"golang.org/x/time/rate"
)

type Server struct {
	registry  *schemes.Registry
	logger    logs.Logger
	newSpan   logs.NewSpan
	metrics   *metrics.Metrics
	rateLimit bfconfigs.RateLimit

	wg        sync.WaitGroup
	mu        sync.Mutex
	listeners []net.Listener
	conns     map[*conn]struct{}
	closed    bool
}

// conn is one client connection. Handles opened on a connection are only
// usable on it, and are closed when it ends.
type conn struct {
	net.Conn
	owned   map[schemes.HandleID]struct{}
	limiter *rate.Limiter
}

var ErrServerClosed = errors.New("server closed")

// Serve accepts connections on ln until ln fails or the server is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	for {
		netConn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return ErrServerClosed
			}
			return wrap(err)
		}

		c := &conn{
			Conn:  netConn,
			owned: make(map[schemes.HandleID]struct{}),
		}
		if s.rateLimit.RPS > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(s.rateLimit.RPS), s.rateLimit.Burst)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			netConn.Close()
			return ErrServerClosed
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, c *conn) {
	ctx, _ = s.newSpan(ctx, "")
	s.metrics.ConnectionOpened()
	s.logger.InfoContext(ctx, "connection open",
		"remote", c.RemoteAddr().String(),
	)

	defer func() {
		c.Close()
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()

		for id := range c.owned {
			if err := s.registry.Close(id); err != nil {
				s.logger.WarnContext(ctx, "close handle of ended connection",
					"handle", id,
					"error", err,
				)
			}
		}
		s.metrics.ConnectionClosed()
		s.logger.InfoContext(ctx, "connection close",
			"handles", len(c.owned),
		)
	}()

	r := bufio.NewReader(c)
	w := bufio.NewWriter(c)
	for {
		req, err := wires.ReadRequest(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.WarnContext(ctx, "read request", "error", wrap(err))
			}
			return
		}

		res := s.handle(ctx, c, req)
		s.metrics.Request(req.Op.String(), res.Status.String())

		if err := wires.WriteResponse(w, res); err != nil {
			s.logger.WarnContext(ctx, "write response", "error", wrap(err))
			return
		}
		if err := w.Flush(); err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.WarnContext(ctx, "write response", "error", wrap(err))
			}
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, c *conn, req wires.Request) wires.Response {
	if c.limiter != nil && !c.limiter.Allow() {
		return wires.ErrorResponse(wires.ErrRateLimited)
	}

	switch req.Op {

	case wires.OpRoot:
		id, err := s.registry.Root()
		if err != nil {
			return wires.ErrorResponse(err)
		}
		return wires.Response{
			Payload: wires.EncodeHandle(id),
		}

	case wires.OpOpen:
		if err := c.check(req.Handle, true); err != nil {
			return wires.ErrorResponse(err)
		}
		id, err := s.registry.Open(req.Handle, string(req.Payload))
		if err != nil {
			return wires.ErrorResponse(err)
		}
		c.owned[id] = struct{}{}
		s.logger.DebugContext(ctx, "open", "handle", id)
		return wires.Response{
			Payload: wires.EncodeHandle(id),
		}

	case wires.OpRead:
		if err := c.check(req.Handle, false); err != nil {
			return wires.ErrorResponse(err)
		}
		buf := make([]byte, min(req.N, wires.MaxPayload))
		n, err := s.registry.Read(req.Handle, buf)
		if err != nil {
			return wires.ErrorResponse(err)
		}
		return wires.Response{
			Payload: buf[:n],
		}

	case wires.OpWrite:
		if err := c.check(req.Handle, false); err != nil {
			return wires.ErrorResponse(err)
		}
		n, err := s.registry.Write(req.Handle, req.Payload)
		if err != nil {
			return wires.ErrorResponse(err)
		}
		return wires.Response{
			Payload: wires.EncodeCount(n),
		}

	case wires.OpClose:
		if err := c.check(req.Handle, false); err != nil {
			return wires.ErrorResponse(err)
		}
		delete(c.owned, req.Handle)
		if err := s.registry.Close(req.Handle); err != nil {
			return wires.ErrorResponse(err)
		}
		s.logger.DebugContext(ctx, "close", "handle", req.Handle)
		return wires.Response{}

	case wires.OpCloseInput:
		if err := c.check(req.Handle, false); err != nil {
			return wires.ErrorResponse(err)
		}
		if err := s.registry.CloseInput(req.Handle); err != nil {
			return wires.ErrorResponse(err)
		}
		return wires.Response{}

	case wires.OpStat:
		if err := c.check(req.Handle, false); err != nil {
			return wires.ErrorResponse(err)
		}
		stat, err := s.registry.Stat(req.Handle)
		if err != nil {
			return wires.ErrorResponse(err)
		}
		payload, err := json.Marshal(stat)
		if err != nil {
			return wires.ErrorResponse(fmt.Errorf("%w: %v", wires.ErrInternal, err))
		}
		return wires.Response{
			Payload: payload,
		}

	}

	return wires.ErrorResponse(fmt.Errorf("%w: unknown op %v", wires.ErrInternal, req.Op))
}

// check rejects handles opened by other connections. The root handle is
// shared by all connections.
func (c *conn) check(id schemes.HandleID, allowRoot bool) error {
	if id == schemes.RootHandle {
		if allowRoot {
			return nil
		}
		return schemes.ErrNotSession
	}
	if _, ok := c.owned[id]; !ok {
		return fmt.Errorf("%w: %d", schemes.ErrNoSuchHandle, id)
	}
	return nil
}

// Close stops accepting, ends every connection and waits for their
// handles to be closed.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	listeners := s.listeners
	s.listeners = nil
	var errs []error
	for _, ln := range listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return errors.Join(errs...)
}
