// Package debugs provides an interactive starlark prompt over a stopped interpreter.
package debugs

import (
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}

// TapIO is where the tap prompt reads statements and writes results.
type TapIO struct {
	In  io.Reader
	Out io.Writer
}

func (Module) TapIO() TapIO {
	return TapIO{
		In:  os.Stdin,
		Out: os.Stdout,
	}
}
