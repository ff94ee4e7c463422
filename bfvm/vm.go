// Package bfvm runs programs of the eight instruction tape language.
package bfvm

import (
	"encoding/gob"
	"io"

	"github.com/reusee/taibf/tapes"
)

type VM[C tapes.Cell] struct {
	Program string
	PC      int
	Steps   uint64
	Tape    *tapes.Tape[C]
}

func NewVM[C tapes.Cell](src string) *VM[C] {
	return &VM[C]{
		Program: src,
		Tape:    tapes.New[C](),
	}
}

type snapshot[C tapes.Cell] struct {
	Program string
	PC      int
	Steps   uint64
	Cells   []C
	Origin  int
	Cursor  int
}

func (v *VM[C]) Snapshot(w io.Writer) error {
	cells, origin := v.Tape.Cells()
	enc := gob.NewEncoder(w)
	if err := enc.Encode(snapshot[C]{
		Program: v.Program,
		PC:      v.PC,
		Steps:   v.Steps,
		Cells:   cells,
		Origin:  origin,
		Cursor:  v.Tape.Cursor(),
	}); err != nil {
		return err
	}
	return nil
}

func (v *VM[C]) Restore(r io.Reader) error {
	var s snapshot[C]
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return err
	}
	v.Program = s.Program
	v.PC = s.PC
	v.Steps = s.Steps
	if v.Tape == nil {
		v.Tape = tapes.New[C]()
	}
	v.Tape.Load(s.Cells, s.Origin, s.Cursor)
	return nil
}
