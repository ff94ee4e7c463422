// Package wires encodes the request and response frames of the socket protocol.
//
// A request is op (1 byte), handle (8 bytes, big endian), n (4 bytes, big
// endian) and n bytes of payload. For read requests n is the maximum number of
// bytes wanted and no payload follows. A response is status (1 byte), n (4
// bytes, big endian) and n bytes of payload.
package wires

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/reusee/taibf/schemes"
)

// MaxPayload is the largest payload a frame may carry.
const MaxPayload = 1 << 20

var ErrFrameTooLarge = errors.New("frame too large")

type Op uint8

const (
	OpRoot Op = iota + 1
	OpOpen
	OpRead
	OpWrite
	OpClose
	OpStat
	OpCloseInput
)

func (o Op) String() string {
	switch o {
	case OpRoot:
		return "root"
	case OpOpen:
		return "open"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpClose:
		return "close"
	case OpStat:
		return "stat"
	case OpCloseInput:
		return "close_input"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

func (o Op) Valid() bool {
	return o >= OpRoot && o <= OpCloseInput
}

type Request struct {
	Op      Op
	Handle  schemes.HandleID
	N       uint32
	Payload []byte
}

const requestHeaderSize = 1 + 8 + 4

func WriteRequest(w io.Writer, req Request) error {
	n := req.N
	if req.Op != OpRead {
		n = uint32(len(req.Payload))
	}
	if n > MaxPayload {
		return fmt.Errorf("%w: %d", ErrFrameTooLarge, n)
	}
	buf := make([]byte, requestHeaderSize, requestHeaderSize+len(req.Payload))
	buf[0] = byte(req.Op)
	binary.BigEndian.PutUint64(buf[1:9], uint64(req.Handle))
	binary.BigEndian.PutUint32(buf[9:13], n)
	if req.Op != OpRead {
		buf = append(buf, req.Payload...)
	}
	_, err := w.Write(buf)
	return err
}

// ReadRequest returns io.EOF if r ends cleanly before a frame starts.
func ReadRequest(r io.Reader) (req Request, err error) {
	var header [requestHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return req, err
	}
	req.Op = Op(header[0])
	req.Handle = schemes.HandleID(binary.BigEndian.Uint64(header[1:9]))
	req.N = binary.BigEndian.Uint32(header[9:13])
	if req.N > MaxPayload {
		return req, fmt.Errorf("%w: %d", ErrFrameTooLarge, req.N)
	}
	if req.Op == OpRead || req.N == 0 {
		return req, nil
	}
	req.Payload = make([]byte, req.N)
	if _, err := io.ReadFull(r, req.Payload); err != nil {
		return req, noEOF(err)
	}
	return req, nil
}

type Response struct {
	Status  Status
	Payload []byte
}

const responseHeaderSize = 1 + 4

func WriteResponse(w io.Writer, res Response) error {
	if len(res.Payload) > MaxPayload {
		return fmt.Errorf("%w: %d", ErrFrameTooLarge, len(res.Payload))
	}
	buf := make([]byte, responseHeaderSize, responseHeaderSize+len(res.Payload))
	buf[0] = byte(res.Status)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(res.Payload)))
	buf = append(buf, res.Payload...)
	_, err := w.Write(buf)
	return err
}

func ReadResponse(r io.Reader) (res Response, err error) {
	var header [responseHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return res, err
	}
	res.Status = Status(header[0])
	n := binary.BigEndian.Uint32(header[1:5])
	if n > MaxPayload {
		return res, fmt.Errorf("%w: %d", ErrFrameTooLarge, n)
	}
	if n == 0 {
		return res, nil
	}
	res.Payload = make([]byte, n)
	if _, err := io.ReadFull(r, res.Payload); err != nil {
		return res, noEOF(err)
	}
	return res, nil
}

// a frame cut short is never a clean end
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func EncodeHandle(id schemes.HandleID) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

func DecodeHandle(b []byte) (schemes.HandleID, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("bad handle payload length: %d", len(b))
	}
	return schemes.HandleID(binary.BigEndian.Uint64(b)), nil
}

func EncodeCount(n int) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(n))
}

func DecodeCount(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("bad count payload length: %d", len(b))
	}
	return int(binary.BigEndian.Uint32(b)), nil
}
