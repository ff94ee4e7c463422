package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/reusee/taibf/bfvm"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/programs"
	"github.com/reusee/taibf/tapes"
)

// runREPL runs every line as a program without input. A line of the form
// :name runs the bundled program of that name.
func runREPL(ctx context.Context, logger logs.Logger) error {
	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".bf_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "bf> ",
		HistoryFile: historyFile,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // Ctrl-C or Ctrl-D
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		src := line
		if name, ok := strings.CutPrefix(line, ":"); ok {
			p, ok := programs.Get(name)
			if !ok {
				fmt.Fprintf(os.Stderr, "no such program: %s\n", name)
				continue
			}
			src = p.Source
		}
		if err := bfvm.Validate(src); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		vm := bfvm.NewVM[tapes.DefaultCell](src)
		buf := new(bytes.Buffer)
		out := bfvm.NewStreamOutput(buf)
		reason, err := vm.Run(ctx, bfvm.NewStreamInput(strings.NewReader("")), out)
		if err == nil {
			err = out.Flush()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		logger.Debug("run", "reason", reason.String(), "steps", vm.Steps)
		fmt.Printf("%q\n", buf.String())
	}
}
