package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/taibf/bfvm"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/metrics"
	"github.com/reusee/taibf/pipes"
	"github.com/reusee/taibf/programs"
	"github.com/reusee/taibf/tapes"
)

type Session struct {
	ID      uuid.UUID
	Digest  string
	Started time.Time

	input   *pipes.Pipe
	output  *pipes.Pipe
	cancel  context.CancelFunc
	done    chan struct{}
	logger  logs.Logger
	metrics *metrics.Metrics

	bytesIn  atomic.Int64
	bytesOut atomic.Int64

	closeOnce sync.Once

	mu     sync.Mutex
	halted bool
	reason bfvm.Reason
	err    error
	steps  uint64
}

// New starts a session running src. The session is independent of the
// caller once started; ctx only carries values and cancellation.
type New func(ctx context.Context, src string) *Session

func (Module) New(
	logger logs.Logger,
	m *metrics.Metrics,
) New {
	return func(ctx context.Context, src string) *Session {
		return start(ctx, src, logger, m, nil)
	}
}

func start(
	ctx context.Context,
	src string,
	logger logs.Logger,
	m *metrics.Metrics,
	wrapInput func(bfvm.Input) bfvm.Input,
) *Session {
	id := uuid.New()
	ctx = logs.WithAttrs(ctx, slog.String("session", id.String()))
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		ID:      id,
		Digest:  programs.Digest(src),
		Started: time.Now(),
		input:   pipes.New(),
		output:  pipes.New(),
		cancel:  cancel,
		done:    make(chan struct{}),
		logger:  logger,
		metrics: m,
	}

	var input bfvm.Input = s.input
	if wrapInput != nil {
		input = wrapInput(input)
	}

	logger.InfoContext(ctx, "session open",
		"digest", s.Digest,
		"size", len(src),
	)
	m.SessionOpened()

	vm := bfvm.NewVM[tapes.DefaultCell](src)
	go s.run(ctx, vm, input)

	return s
}

func (s *Session) run(ctx context.Context, vm *bfvm.VM[tapes.DefaultCell], input bfvm.Input) {
	defer close(s.done)

	var reason bfvm.Reason
	var err error
	defer func() {
		if p := recover(); p != nil {
			reason = bfvm.ReasonFaulted
			err = fmt.Errorf("%w: %v", ErrFaulted, p)
		}

		s.mu.Lock()
		s.halted = true
		s.reason = reason
		s.err = err
		s.steps = vm.Steps
		s.mu.Unlock()

		// pending output stays readable
		s.output.CloseWrite()
		s.input.CloseRead()

		if err != nil {
			s.logger.WarnContext(ctx, "session halt",
				"reason", reason.String(),
				"steps", vm.Steps,
				"error", err,
			)
		} else {
			s.logger.InfoContext(ctx, "session halt",
				"reason", reason.String(),
				"steps", vm.Steps,
			)
		}
		s.metrics.Terminated(reason.String())
	}()

	reason, err = vm.Run(ctx, input, s.output)
}

// PushInput enqueues b as program input without blocking. It fails only if
// no byte is accepted.
func (s *Session) PushInput(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := s.input.Write(b)
	if n > 0 {
		s.bytesIn.Add(int64(n))
		s.metrics.InputBytes(n)
		return n, nil
	}
	if err == nil {
		return 0, nil
	}
	if haltErr := s.haltError(); haltErr != nil {
		return 0, haltErr
	}
	return 0, ErrBrokenPipe
}

// CloseInput ends program input. A pending or later `,` stops the
// interpreter with InputClosed once queued bytes are consumed.
func (s *Session) CloseInput() {
	s.input.CloseWrite()
}

// DrainOutput copies already produced output into buf without blocking.
// It returns ErrWouldBlock if nothing is pending and the interpreter is live,
// and (0, nil) once the interpreter halted cleanly and all output is drained.
func (s *Session) DrainOutput(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := s.output.TryRead(buf)
	switch {
	case err == nil:
		s.bytesOut.Add(int64(n))
		s.metrics.OutputBytes(n)
		return n, nil
	case errors.Is(err, pipes.ErrEmpty):
		return 0, ErrWouldBlock
	case errors.Is(err, io.EOF):
		return 0, s.haltError()
	}
	return 0, ErrBrokenPipe
}

func (s *Session) haltError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the interpreter and waits for its goroutine. With a positive
// timeout, a goroutine still running after timeout is detached and
// ErrCloseTimeout is returned.
func (s *Session) Close(timeout time.Duration) error {
	s.closeOnce.Do(func() {
		// unblocks a pending `,`
		s.input.CloseWrite()
		// unblocks and stops `.`
		s.output.CloseRead()
		s.cancel()
		s.metrics.SessionClosed()
	})

	if timeout <= 0 {
		<-s.done
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return nil
	case <-timer.C:
		s.logger.Warn("session detached",
			"session", s.ID.String(),
			"timeout", timeout,
		)
		return ErrCloseTimeout
	}
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the termination reason and error once the interpreter halted.
func (s *Session) Result() (reason bfvm.Reason, halted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason, s.halted, s.err
}
