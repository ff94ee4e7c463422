package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reusee/taibf/bfvm"
	"github.com/reusee/taibf/clients"
	"github.com/reusee/taibf/debugs"
	"github.com/reusee/taibf/tapes"
)

func runLocal(ctx context.Context, src string, tap debugs.Tap) error {
	if err := bfvm.Validate(src); err != nil {
		return err
	}
	vm := bfvm.NewVM[tapes.DefaultCell](src)
	out := bfvm.NewStreamOutput(os.Stdout)
	reason, err := vm.Run(ctx, bfvm.NewStreamInput(os.Stdin), out)
	if flushErr := out.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	if *tapFlag {
		if tapErr := tap(ctx, "bf", debugs.VMGlobals(vm, reason)); tapErr != nil && !errors.Is(tapErr, context.Canceled) {
			return tapErr
		}
	}
	return err
}

func runRemote(ctx context.Context, src string, connect clients.Connect) error {
	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	file, err := client.OpenFile(src)
	if err != nil {
		return err
	}
	defer file.Close()

	go func() {
		if _, err := io.Copy(file, os.Stdin); err != nil {
			fmt.Fprintln(os.Stderr, "write input:", err)
		}
		if err := file.CloseWrite(); err != nil {
			fmt.Fprintln(os.Stderr, "close input:", err)
		}
	}()

	copied := make(chan error, 1)
	go func() {
		_, err := io.Copy(os.Stdout, file)
		copied <- err
	}()

	select {
	case err := <-copied:
		return err
	case <-ctx.Done():
		return nil
	}
}
