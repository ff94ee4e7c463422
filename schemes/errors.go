package schemes

import (
	"errors"

	"github.com/reusee/taibf/bfvm"
	"github.com/reusee/taibf/sessions"
)

var (
	ErrNoSuchHandle     = errors.New("no such handle")
	ErrWouldBlock       = sessions.ErrWouldBlock
	ErrMalformedProgram = bfvm.ErrMalformedProgram
	ErrUnrecoverable    = errors.New("registry unrecoverable")
	ErrAccessDenied     = errors.New("access denied")
	ErrNotSession       = errors.New("handle is not a session")
	ErrBrokenPipe       = sessions.ErrBrokenPipe
	ErrTooManySessions  = errors.New("too many sessions")
	ErrShutdown         = errors.New("registry shut down")
	ErrCloseTimeout     = sessions.ErrCloseTimeout
)
