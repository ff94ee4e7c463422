package schemes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/reusee/taibf/bfvm"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/sessions"
	"github.com/reusee/taibf/syncs"
	"github.com/samber/lo"
)

type HandleID uint64

// RootHandle is the only handle programs can be opened through. It owns no session.
const RootHandle HandleID = 0

type Registry struct {
	newSession   sessions.New
	closeTimeout time.Duration
	logger       logs.Logger
	slots        syncs.Semaphore

	// parent of all session contexts
	ctx    context.Context
	cancel context.CancelFunc

	poisoned atomic.Bool

	mu       sync.RWMutex
	handles  map[HandleID]*sessions.Session
	ids      *bitset.BitSet
	shutdown bool
}

func New(
	newSession sessions.New,
	maxSessions int,
	closeTimeout time.Duration,
	logger logs.Logger,
) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	ids := bitset.New(64)
	ids.Set(uint(RootHandle))
	return &Registry{
		newSession:   newSession,
		closeTimeout: closeTimeout,
		logger:       logger,
		slots:        syncs.NewSemaphore(maxSessions),
		ctx:          ctx,
		cancel:       cancel,
		handles:      make(map[HandleID]*sessions.Session),
		ids:          ids,
	}
}

// locked runs fn holding the write lock. A panic in fn poisons the registry.
func (r *Registry) locked(fn func() error) (err error) {
	if r.poisoned.Load() {
		return ErrUnrecoverable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			r.poisoned.Store(true)
			r.logger.Error("registry poisoned", "panic", fmt.Sprint(p))
			err = fmt.Errorf("%w: %v", ErrUnrecoverable, p)
		}
	}()
	return fn()
}

func (r *Registry) lookup(id HandleID) (*sessions.Session, error) {
	if r.poisoned.Load() {
		return nil, ErrUnrecoverable
	}
	if id == RootHandle {
		return nil, ErrNotSession
	}
	r.mu.RLock()
	s, ok := r.handles[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchHandle, id)
	}
	return s, nil
}

// Root returns the root handle.
func (r *Registry) Root() (HandleID, error) {
	if r.poisoned.Load() {
		return 0, ErrUnrecoverable
	}
	return RootHandle, nil
}

// Open starts source as a new session and returns its handle. dir must be
// the root handle.
func (r *Registry) Open(dir HandleID, source string) (HandleID, error) {
	if dir != RootHandle {
		if _, err := r.lookup(dir); err != nil {
			if errors.Is(err, ErrUnrecoverable) {
				return 0, err
			}
			return 0, fmt.Errorf("%w: %d", ErrNoSuchHandle, dir)
		}
		return 0, fmt.Errorf("%w: open through handle %d", ErrAccessDenied, dir)
	}
	if r.poisoned.Load() {
		return 0, ErrUnrecoverable
	}

	if err := bfvm.Validate(source); err != nil {
		return 0, err
	}

	if !r.slots.TryAcquire() {
		return 0, ErrTooManySessions
	}

	session := r.newSession(r.ctx, source)

	var id HandleID
	err := r.locked(func() error {
		if r.shutdown {
			return ErrShutdown
		}
		next, ok := r.ids.NextClear(1)
		if !ok {
			next = r.ids.Len()
		}
		id = HandleID(next)
		r.handles[id] = session
		r.ids.Set(next)
		return nil
	})
	if err != nil {
		session.Close(r.closeTimeout)
		r.slots.Release()
		return 0, err
	}

	r.logger.Debug("handle open",
		"handle", id,
		"session", session.ID.String(),
	)
	return id, nil
}

// Read copies pending program output into buf without blocking.
func (r *Registry) Read(id HandleID, buf []byte) (int, error) {
	s, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.DrainOutput(buf)
}

// Write hands buf to the program as input without blocking.
func (r *Registry) Write(id HandleID, buf []byte) (int, error) {
	s, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.PushInput(buf)
}

// CloseInput ends the input of the program behind id.
func (r *Registry) CloseInput(id HandleID) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	s.CloseInput()
	return nil
}

// Close removes the handle and waits for its session to stop. The id is
// reusable once Close returns.
func (r *Registry) Close(id HandleID) error {
	if id == RootHandle {
		if r.poisoned.Load() {
			return ErrUnrecoverable
		}
		return ErrNotSession
	}
	var s *sessions.Session
	if err := r.locked(func() error {
		var ok bool
		s, ok = r.handles[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrNoSuchHandle, id)
		}
		delete(r.handles, id)
		return nil
	}); err != nil {
		return err
	}

	closeErr := s.Close(r.closeTimeout)

	if err := r.locked(func() error {
		r.ids.Clear(uint(id))
		return nil
	}); err != nil {
		return err
	}
	r.slots.Release()

	r.logger.Debug("handle close",
		"handle", id,
		"session", s.ID.String(),
	)
	return closeErr
}

func (r *Registry) Stat(id HandleID) (sessions.Stat, error) {
	s, err := r.lookup(id)
	if err != nil {
		return sessions.Stat{}, err
	}
	return s.Stat(), nil
}

// Handles returns the open session handles in ascending order.
func (r *Registry) Handles() ([]HandleID, error) {
	if r.poisoned.Load() {
		return nil, ErrUnrecoverable
	}
	r.mu.RLock()
	ret := lo.Keys(r.handles)
	r.mu.RUnlock()
	slices.Sort(ret)
	return ret, nil
}

// Shutdown refuses further opens and closes every session. A poisoned
// registry still closes the sessions it holds and reports ErrUnrecoverable.
func (r *Registry) Shutdown(ctx context.Context) error {
	var toClose map[HandleID]*sessions.Session
	take := func() error {
		r.shutdown = true
		toClose = r.handles
		r.handles = make(map[HandleID]*sessions.Session)
		return nil
	}
	var poisonErr error
	if err := r.locked(take); err != nil {
		poisonErr = err
		r.mu.Lock()
		take()
		r.mu.Unlock()
	}

	var wg sync.WaitGroup
	errs := make([]error, 0, len(toClose))
	var errsLock sync.Mutex
	for id, s := range toClose {
		wg.Go(func() {
			err := s.Close(r.closeTimeout)
			r.slots.Release()
			if err != nil {
				errsLock.Lock()
				errs = append(errs, fmt.Errorf("handle %d: %w", id, err))
				errsLock.Unlock()
			}
		})
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.cancel()
		return errors.Join(poisonErr, ctx.Err())
	}
	r.cancel()

	if len(toClose) > 0 {
		r.logger.Info("registry shutdown", "closed", len(toClose))
	}
	return errors.Join(append([]error{poisonErr}, errs...)...)
}
