package debugs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/reusee/taibf/logs"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap runs a prompt with globals predeclared until its input ends.
type Tap func(ctx context.Context, what string, globals map[string]any) error

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

func (Module) Tap(
	logger logs.Logger,
	tapIO TapIO,
) Tap {
	return func(ctx context.Context, what string, globals map[string]any) error {
		logger.InfoContext(ctx, "tap: "+what,
			"globals", slices.Sorted(maps.Keys(globals)),
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		env := make(starlark.StringDict)
		for name, value := range globals {
			env[name] = toStarlarkValue(value)
		}

		thread := &starlark.Thread{
			Name: what,
			Print: func(_ *starlark.Thread, msg string) {
				fmt.Fprintln(tapIO.Out, msg)
			},
		}

		scanner := bufio.NewScanner(tapIO.In)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			fmt.Fprint(tapIO.Out, what+"> ")
			if !scanner.Scan() {
				fmt.Fprintln(tapIO.Out)
				return scanner.Err()
			}
			line := scanner.Text()
			if line == "" {
				continue
			}
			if err := evalLine(thread, line, env, tapIO); err != nil {
				fmt.Fprintf(tapIO.Out, "error: %v\n", err)
			}
		}
	}
}

// evalLine prints the value of an expression, or executes a statement and
// keeps the globals it defines.
func evalLine(thread *starlark.Thread, line string, env starlark.StringDict, tapIO TapIO) error {
	value, err := starlark.EvalOptions(fileOptions, thread, "<tap>", line, env)
	if err == nil {
		if value != starlark.None {
			fmt.Fprintln(tapIO.Out, value.String())
		}
		return nil
	}
	var syntaxErr syntax.Error
	if !errors.As(err, &syntaxErr) {
		return err
	}
	defined, err := starlark.ExecFileOptions(fileOptions, thread, "<tap>", line, env)
	if err != nil {
		return err
	}
	maps.Copy(env, defined)
	return nil
}
