package wires

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/reusee/taibf/schemes"
)

func TestRequestFrames(t *testing.T) {
	buf := new(bytes.Buffer)
	reqs := []Request{
		{Op: OpRoot},
		{Op: OpOpen, Handle: schemes.RootHandle, Payload: []byte(",[.,]")},
		{Op: OpRead, Handle: 3, N: 512},
		{Op: OpWrite, Handle: 1<<40 + 7, Payload: []byte("foo")},
		{Op: OpClose, Handle: 3},
		{Op: OpStat, Handle: 3},
		{Op: OpCloseInput, Handle: 3},
	}
	for _, req := range reqs {
		if err := WriteRequest(buf, req); err != nil {
			t.Fatal(err)
		}
	}
	for _, expected := range reqs {
		got, err := ReadRequest(buf)
		if err != nil {
			t.Fatal(err)
		}
		if expected.Op != OpRead {
			expected.N = uint32(len(expected.Payload))
		}
		if got.Op != expected.Op || got.Handle != expected.Handle || got.N != expected.N ||
			!bytes.Equal(got.Payload, expected.Payload) {
			t.Fatalf("got %+v, expected %+v", got, expected)
		}
	}
	if _, err := ReadRequest(buf); err != io.EOF {
		t.Fatalf("got %v", err)
	}
}

func TestReadRequestCarriesNoPayload(t *testing.T) {
	buf := new(bytes.Buffer)
	// payload of a read request is ignored
	if err := WriteRequest(buf, Request{Op: OpRead, Handle: 1, N: 10, Payload: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != requestHeaderSize {
		t.Fatalf("got %d", buf.Len())
	}
}

func TestTruncatedFrame(t *testing.T) {
	buf := new(bytes.Buffer)
	WriteRequest(buf, Request{Op: OpWrite, Handle: 1, Payload: []byte("foobar")})
	data := buf.Bytes()[:buf.Len()-2]
	if _, err := ReadRequest(bytes.NewReader(data)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got %v", err)
	}
	if _, err := ReadRequest(bytes.NewReader(data[:5])); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got %v", err)
	}
}

func TestFrameTooLarge(t *testing.T) {
	err := WriteRequest(io.Discard, Request{Op: OpWrite, Payload: make([]byte, MaxPayload+1)})
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v", err)
	}
	header := []byte{byte(OpWrite), 0, 0, 0, 0, 0, 0, 0, 1, 0xff, 0xff, 0xff, 0xff}
	if _, err := ReadRequest(bytes.NewReader(header)); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v", err)
	}
}

func TestResponseFrames(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteResponse(buf, Response{Payload: EncodeHandle(5)}); err != nil {
		t.Fatal(err)
	}
	if err := WriteResponse(buf, ErrorResponse(fmt.Errorf("%w: 9", schemes.ErrNoSuchHandle))); err != nil {
		t.Fatal(err)
	}
	if err := WriteResponse(buf, Response{}); err != nil {
		t.Fatal(err)
	}

	res, err := ReadResponse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Err() != nil {
		t.Fatal(res.Err())
	}
	id, err := DecodeHandle(res.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if id != 5 {
		t.Fatalf("got %d", id)
	}

	res, err = ReadResponse(buf)
	if err != nil {
		t.Fatal(err)
	}
	err = res.Err()
	if !errors.Is(err, schemes.ErrNoSuchHandle) {
		t.Fatalf("got %v", err)
	}
	if err.Error() != "no such handle: 9" {
		t.Fatalf("got %q", err.Error())
	}

	res, err = ReadResponse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusOK || len(res.Payload) != 0 {
		t.Fatalf("got %+v", res)
	}
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status Status
	}{
		{nil, StatusOK},
		{schemes.ErrWouldBlock, StatusWouldBlock},
		{fmt.Errorf("open: %w", schemes.ErrMalformedProgram), StatusMalformedProgram},
		{schemes.ErrUnrecoverable, StatusUnrecoverable},
		{schemes.ErrAccessDenied, StatusAccessDenied},
		{schemes.ErrBrokenPipe, StatusBrokenPipe},
		{schemes.ErrNotSession, StatusNotSession},
		{schemes.ErrTooManySessions, StatusTooManySessions},
		{ErrRateLimited, StatusRateLimited},
		{schemes.ErrCloseTimeout, StatusCloseTimeout},
		{schemes.ErrShutdown, StatusShutdown},
		{io.ErrShortWrite, StatusInternal},
	}
	for _, c := range cases {
		status := StatusOf(c.err)
		if status != c.status {
			t.Fatalf("%v: got %v", c.err, status)
		}
		if c.err == nil {
			continue
		}
		// every status maps back to a matching sentinel
		remote := &RemoteError{Status: status}
		if status != StatusInternal && !errors.Is(c.err, errors.Unwrap(remote)) {
			t.Fatalf("%v: unwraps to %v", c.err, errors.Unwrap(remote))
		}
	}
}

func TestCounts(t *testing.T) {
	n, err := DecodeCount(EncodeCount(1234))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1234 {
		t.Fatalf("got %d", n)
	}
	if _, err := DecodeCount([]byte{1}); err == nil {
		t.Fatal("should fail")
	}
	if _, err := DecodeHandle(nil); err == nil {
		t.Fatal("should fail")
	}
	if OpStat.String() != "stat" || Op(42).Valid() {
		t.Fatal()
	}
}
