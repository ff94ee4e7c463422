package bfvm

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// CheckInterval is the number of steps between context checks.
const CheckInterval = 1024

// Run executes from the current PC until the program stops. The returned
// error is non-nil only for ReasonMalformed and ReasonFaulted.
func (v *VM[C]) Run(ctx context.Context, in Input, out Output) (Reason, error) {
	prog := v.Program
	tape := v.Tape
	for {
		if v.PC < 0 || v.PC >= len(prog) {
			return ReasonCompleted, nil
		}

		if v.Steps%CheckInterval == 0 && ctx.Err() != nil {
			return ReasonCanceled, nil
		}
		v.Steps++

		switch prog[v.PC] {

		case '+':
			tape.Increment()

		case '-':
			tape.Decrement()

		case '>':
			tape.MoveRight()

		case '<':
			tape.MoveLeft()

		case '.':
			if err := out.WriteByte(byte(tape.Current())); err != nil {
				if errors.Is(err, io.ErrClosedPipe) {
					return ReasonOutputClosed, nil
				}
				return ReasonFaulted, fmt.Errorf("write output: %w", err)
			}

		case ',':
			b, err := in.ReadByteContext(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return ReasonInputClosed, nil
				}
				if ctx.Err() != nil {
					return ReasonCanceled, nil
				}
				return ReasonFaulted, fmt.Errorf("read input: %w", err)
			}
			tape.Set(int64(b))

		case '[':
			if tape.Current() == 0 {
				pc, err := matchForward(prog, v.PC)
				if err != nil {
					return ReasonMalformed, err
				}
				v.PC = pc
			}

		case ']':
			if tape.Current() != 0 {
				pc, err := matchBackward(prog, v.PC)
				if err != nil {
					return ReasonMalformed, err
				}
				v.PC = pc
			}

		}

		v.PC++
	}
}

func matchForward(prog string, pc int) (int, error) {
	depth := 0
	for i := pc + 1; i < len(prog); i++ {
		switch prog[i] {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, &MalformedError{
		Offset:  pc,
		Bracket: '[',
	}
}

func matchBackward(prog string, pc int) (int, error) {
	depth := 0
	for i := pc - 1; i >= 0; i-- {
		switch prog[i] {
		case ']':
			depth++
		case '[':
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, &MalformedError{
		Offset:  pc,
		Bracket: ']',
	}
}
