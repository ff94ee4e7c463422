// Package daemons implements the readiness handshake between a daemon and
// the process that started it.
//
// The starting process passes the write end of a pipe to the daemon and names
// its descriptor in the INIT_NOTIFY environment variable. The daemon writes a
// single status byte once it serves requests: zero for ready, anything else
// for a startup failure.
package daemons

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"golang.org/x/sys/unix"
)

const EnvNotify = "INIT_NOTIFY"

// Ready reports readiness. It does nothing if INIT_NOTIFY is not set.
func Ready() error {
	return notify(0)
}

// Fail reports a startup failure with a non-zero code.
func Fail(code byte) error {
	if code == 0 {
		code = 1
	}
	return notify(code)
}

func notify(status byte) error {
	str := os.Getenv(EnvNotify)
	if str == "" {
		return nil
	}
	fd, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("bad %s: %w", EnvNotify, err)
	}
	// notify at most once
	os.Unsetenv(EnvNotify)
	defer unix.Close(fd)
	for {
		_, err := unix.Write(fd, []byte{status})
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		return nil
	}
}

var ErrNotReady = errors.New("daemon exited before ready")

// Spawn starts cmd as a daemon and waits for it to report readiness.
func Spawn(cmd *exec.Cmd) error {
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	defer r.Close()

	// first extra file is descriptor 3 in the child
	cmd.ExtraFiles = append([]*os.File{w}, cmd.ExtraFiles...)
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, EnvNotify+"=3")

	if err := cmd.Start(); err != nil {
		w.Close()
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	w.Close()

	var status [1]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrNotReady
		}
		return err
	}
	if status[0] != 0 {
		return fmt.Errorf("%s failed with %d", cmd.Path, status[0])
	}
	return nil
}
