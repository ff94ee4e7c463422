// Package tapes implements the cell store of the interpreter: an unbounded,
// bidirectionally growing row of wrapping integer cells with a cursor.
package tapes

// Cell is the set of cell widths a tape can hold. Arithmetic on signed
// integers wraps in two's complement, which is the overflow behavior cells need.
type Cell interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// DefaultCell is the cell width sessions run with.
type DefaultCell = int32

type Direction int8

const (
	Left  Direction = -1
	Right Direction = 1
)

// Tape keeps cells at positions >= 0 in right and cells at negative
// positions in left, mirrored, so both ends grow by appending.
// Position 0 is the cell the tape starts on.
type Tape[C Cell] struct {
	right []C
	left  []C
	pos   int
}

func New[C Cell]() *Tape[C] {
	return &Tape[C]{
		right: make([]C, 1, 32),
	}
}

func (t *Tape[C]) Move(dir Direction) {
	if dir < 0 {
		t.MoveLeft()
	} else {
		t.MoveRight()
	}
}

func (t *Tape[C]) MoveRight() {
	t.pos++
	if t.pos == len(t.right) {
		t.right = append(t.right, 0)
	}
}

func (t *Tape[C]) MoveLeft() {
	t.pos--
	if -t.pos-1 == len(t.left) {
		t.left = append(t.left, 0)
	}
}

func (t *Tape[C]) cell() *C {
	if t.pos >= 0 {
		return &t.right[t.pos]
	}
	return &t.left[-t.pos-1]
}

func (t *Tape[C]) Increment() {
	*t.cell()++
}

func (t *Tape[C]) Decrement() {
	*t.cell()--
}

func (t *Tape[C]) Current() C {
	return *t.cell()
}

// Set stores the low-order bits of v that fit the cell width.
func (t *Tape[C]) Set(v int64) {
	*t.cell() = C(v)
}

// Cursor returns the cursor position relative to the starting cell.
func (t *Tape[C]) Cursor() int {
	return t.pos
}

func (t *Tape[C]) Len() int {
	return len(t.left) + len(t.right)
}

// Cells returns a copy of all allocated cells, leftmost first, and the
// index of the starting cell in it.
func (t *Tape[C]) Cells() (cells []C, origin int) {
	cells = make([]C, 0, t.Len())
	for i := len(t.left) - 1; i >= 0; i-- {
		cells = append(cells, t.left[i])
	}
	cells = append(cells, t.right...)
	return cells, len(t.left)
}

// Load replaces the tape contents with cells as returned by Cells, and puts
// the cursor at position cursor relative to origin.
func (t *Tape[C]) Load(cells []C, origin int, cursor int) {
	if origin < 0 || origin >= len(cells) {
		cells = []C{0}
		origin = 0
	}
	t.left = t.left[:0]
	for i := origin - 1; i >= 0; i-- {
		t.left = append(t.left, cells[i])
	}
	t.right = append(t.right[:0], cells[origin:]...)
	t.pos = min(max(cursor, -len(t.left)), len(t.right)-1)
}
