package sessions

import "errors"

var (
	ErrWouldBlock   = errors.New("would block")
	ErrBrokenPipe   = errors.New("broken pipe")
	ErrCloseTimeout = errors.New("close timeout")
	ErrFaulted      = errors.New("interpreter faulted")
)
