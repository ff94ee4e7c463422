package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/reusee/dscope"
	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/clients"
	"github.com/reusee/taibf/cmds"
	"github.com/reusee/taibf/daemons"
	"github.com/reusee/taibf/debugs"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/modes"
	"github.com/reusee/taibf/programs"
)

var (
	fileFlag  = cmds.Var[string]("-file")
	progFlag  = cmds.Var[string]("-prog")
	codeFlag  = cmds.Var[string]("-code")
	localFlag = cmds.Switch("-local")
	tapFlag   = cmds.Switch("-tap")
)

type action int

const (
	actionRun action = iota
	actionREPL
	actionList
	actionSpawn
)

var act = actionRun

func init() {
	cmds.Define("-list", cmds.Func(func() {
		act = actionList
	}).Desc("list bundled programs"))
	cmds.Define("repl", cmds.Func(func() {
		act = actionREPL
	}).Desc("run each input line as a program"))
	cmds.Define("daemon", cmds.Func(func() {
		act = actionSpawn
	}).Desc("start bfd in the background and wait until it is ready"))
}

func main() {
	cmds.Execute(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	var err error
	switch act {

	case actionList:
		for _, p := range programs.All() {
			fmt.Printf("%s\t%s\n", p.Name, p.Description)
		}

	case actionSpawn:
		scope.Call(func(
			listen bfconfigs.Listen,
		) {
			err = spawnDaemon(listen)
		})

	case actionREPL:
		scope.Call(func(
			logger logs.Logger,
		) {
			err = runREPL(ctx, logger)
		})

	case actionRun:
		var src string
		src, err = programSource()
		if err != nil {
			break
		}
		if src == "" {
			if isTerminal(os.Stdin) {
				scope.Call(func(
					logger logs.Logger,
				) {
					err = runREPL(ctx, logger)
				})
				break
			}
			err = fmt.Errorf("no program, use -code, -file or -prog")
			break
		}
		if *localFlag {
			scope.Call(func(
				tap debugs.Tap,
			) {
				err = runLocal(ctx, src, tap)
			})
		} else {
			scope.Call(func(
				connect clients.Connect,
			) {
				err = runRemote(ctx, src, connect)
			})
		}
	}

	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func programSource() (string, error) {
	switch {
	case *codeFlag != "":
		return *codeFlag, nil
	case *fileFlag != "":
		content, err := os.ReadFile(*fileFlag)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case *progFlag != "":
		p, ok := programs.Get(*progFlag)
		if !ok {
			return "", fmt.Errorf("no such program: %s", *progFlag)
		}
		return p.Source, nil
	}
	return "", nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func spawnDaemon(listen bfconfigs.Listen) error {
	path, err := exec.LookPath("bfd")
	if err != nil {
		return err
	}
	cmd := exec.Command(path, "-network", listen.Network, "-addr", listen.Addr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := daemons.Spawn(cmd); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "bfd ready on %s, pid %d\n", listen, cmd.Process.Pid)
	return nil
}
