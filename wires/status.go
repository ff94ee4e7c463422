package wires

import (
	"errors"
	"fmt"

	"github.com/reusee/taibf/schemes"
)

type Status uint8

const (
	StatusOK Status = iota
	StatusNoSuchHandle
	StatusWouldBlock
	StatusMalformedProgram
	StatusUnrecoverable
	StatusAccessDenied
	StatusBrokenPipe
	StatusNotSession
	StatusTooManySessions
	StatusRateLimited
	StatusInternal
	StatusCloseTimeout
	StatusShutdown
)

var ErrRateLimited = errors.New("rate limited")

var ErrInternal = errors.New("internal error")

var statusErrors = []struct {
	status Status
	err    error
}{
	{StatusNoSuchHandle, schemes.ErrNoSuchHandle},
	{StatusWouldBlock, schemes.ErrWouldBlock},
	{StatusMalformedProgram, schemes.ErrMalformedProgram},
	{StatusUnrecoverable, schemes.ErrUnrecoverable},
	{StatusAccessDenied, schemes.ErrAccessDenied},
	{StatusBrokenPipe, schemes.ErrBrokenPipe},
	{StatusNotSession, schemes.ErrNotSession},
	{StatusTooManySessions, schemes.ErrTooManySessions},
	{StatusRateLimited, ErrRateLimited},
	{StatusCloseTimeout, schemes.ErrCloseTimeout},
	{StatusShutdown, schemes.ErrShutdown},
	{StatusInternal, ErrInternal},
}

// StatusOf maps err to the status reported to the peer.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.status
		}
	}
	return StatusInternal
}

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	for _, se := range statusErrors {
		if se.status == s {
			return se.err.Error()
		}
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// RemoteError is an error reported by the peer. It matches the sentinel of
// its status with errors.Is.
type RemoteError struct {
	Status  Status
	Message string
}

var _ error = new(RemoteError)

func (r *RemoteError) Error() string {
	if r.Message == "" {
		return r.Status.String()
	}
	return r.Message
}

func (r *RemoteError) Unwrap() error {
	for _, se := range statusErrors {
		if se.status == r.Status {
			return se.err
		}
	}
	return ErrInternal
}

// ErrorResponse builds the response reporting err.
func ErrorResponse(err error) Response {
	msg := err.Error()
	if len(msg) > MaxPayload {
		msg = msg[:MaxPayload]
	}
	return Response{
		Status:  StatusOf(err),
		Payload: []byte(msg),
	}
}

// Err returns nil for an OK response and a *RemoteError otherwise.
func (r Response) Err() error {
	if r.Status == StatusOK {
		return nil
	}
	return &RemoteError{
		Status:  r.Status,
		Message: string(r.Payload),
	}
}
