package bfvm

import (
	"bufio"
	"context"
	"io"
)

// Input is the byte source of `,`. ReadByteContext blocks until a byte is
// available, and returns io.EOF once the source is permanently closed.
type Input interface {
	ReadByteContext(ctx context.Context) (byte, error)
}

// Output is the byte sink of `.`. WriteByte returns an error wrapping
// io.ErrClosedPipe once the sink is permanently closed.
type Output interface {
	WriteByte(b byte) error
}

type StreamInput struct {
	r io.ByteReader
}

func NewStreamInput(r io.Reader) *StreamInput {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &StreamInput{
		r: br,
	}
}

var _ Input = new(StreamInput)

func (s *StreamInput) ReadByteContext(ctx context.Context) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.r.ReadByte()
}

// StreamOutput buffers writes and flushes on newline.
type StreamOutput struct {
	w *bufio.Writer
}

func NewStreamOutput(w io.Writer) *StreamOutput {
	return &StreamOutput{
		w: bufio.NewWriter(w),
	}
}

var _ Output = new(StreamOutput)

func (s *StreamOutput) WriteByte(b byte) error {
	if err := s.w.WriteByte(b); err != nil {
		return err
	}
	if b == '\n' {
		return s.w.Flush()
	}
	return nil
}

func (s *StreamOutput) Flush() error {
	return s.w.Flush()
}
