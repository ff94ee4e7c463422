package bfvm

import (
	"errors"
	"fmt"
)

var ErrMalformedProgram = errors.New("malformed program")

// MalformedError reports an unmatched bracket at Offset.
type MalformedError struct {
	Offset  int
	Bracket byte
}

var _ error = new(MalformedError)

func (m *MalformedError) Error() string {
	return fmt.Sprintf("%s: unmatched %q at offset %d", ErrMalformedProgram, m.Bracket, m.Offset)
}

func (m *MalformedError) Unwrap() error {
	return ErrMalformedProgram
}
