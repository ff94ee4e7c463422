package daemons

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestReadyWithoutEnv(t *testing.T) {
	t.Setenv(EnvNotify, "")
	if err := Ready(); err != nil {
		t.Fatal(err)
	}
}

func TestReady(t *testing.T) {
	fds := make([]int, 2)
	if err := unix.Pipe(fds); err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fds[0])
	t.Setenv(EnvNotify, strconv.Itoa(fds[1]))

	if err := Ready(); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 2)
	n, err := unix.Read(fds[0], buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != 0 {
		t.Fatalf("got %v", buf[:n])
	}
	// write end is closed after notifying
	n, err = unix.Read(fds[0], buf)
	if err != nil || n != 0 {
		t.Fatalf("got %v %v", n, err)
	}
	// and a second notification does nothing
	if err := Ready(); err != nil {
		t.Fatal(err)
	}
}

func TestBadEnv(t *testing.T) {
	t.Setenv(EnvNotify, "foo")
	if err := Ready(); err == nil {
		t.Fatal("should fail")
	}
}

func TestSpawn(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh")
	}

	if err := Spawn(exec.Command("sh", "-c", `[ "$INIT_NOTIFY" = 3 ] && printf '\000' >&3`)); err != nil {
		t.Fatal(err)
	}

	err := Spawn(exec.Command("sh", "-c", "exit 0"))
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("got %v", err)
	}

	err = Spawn(exec.Command("sh", "-c", `printf '\002' >&3`))
	if err == nil || !strings.Contains(err.Error(), "failed with 2") {
		t.Fatalf("got %v", err)
	}

	err = Spawn(exec.Command(os.DevNull))
	if err == nil {
		t.Fatal("should fail")
	}
}
