package debugs

import (
	"github.com/reusee/taibf/bfvm"
	"github.com/reusee/taibf/tapes"
)

// VMGlobals exposes the state of a stopped interpreter to Tap.
func VMGlobals[C tapes.Cell](vm *bfvm.VM[C], reason bfvm.Reason) map[string]any {
	cells, origin := vm.Tape.Cells()
	values := make([]int64, len(cells))
	for i, c := range cells {
		values[i] = int64(c)
	}
	return map[string]any{
		"program": vm.Program,
		"pc":      vm.PC,
		"steps":   vm.Steps,
		"reason":  reason.String(),
		"cells":   values,
		"origin":  origin,
		"cursor":  vm.Tape.Cursor(),
		"current": int64(vm.Tape.Current()),
		// cell returns the value at a position relative to the starting cell
		"cell": func(pos int) int64 {
			i := origin + pos
			if i < 0 || i >= len(values) {
				return 0
			}
			return values[i]
		},
	}
}
