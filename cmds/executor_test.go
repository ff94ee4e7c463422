package cmds

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestExecutor(t *testing.T) {
	executor := NewExecutor()

	var n int
	executor.Define("+n", Func(func() {
		n = 42
	}))
	executor.Define("n", Func(func(i int) {
		n = i
	}))

	if err := executor.Execute([]string{"+n"}); err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Fatalf("got %v", n)
	}

	if err := executor.Execute([]string{"n", "1"}); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("got %v", n)
	}

	err := executor.Execute([]string{"foo"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: foo") {
		t.Fatalf("got %v", err)
	}

	err = executor.Execute([]string{"n", "x"})
	if err == nil || !strings.Contains(err.Error(), "convert x to int") {
		t.Fatalf("got %v", err)
	}
}

func TestDurationArgument(t *testing.T) {
	executor := NewExecutor()
	var d time.Duration
	var f float64
	executor.Define("-timeout", Func(func(v time.Duration) {
		d = v
	}))
	executor.Define("-rps", Func(func(v float64) {
		f = v
	}))
	if err := executor.Execute([]string{"-timeout", "3s", "-rps", "2.5"}); err != nil {
		t.Fatal(err)
	}
	if d != 3*time.Second {
		t.Fatalf("got %v", d)
	}
	if f != 2.5 {
		t.Fatalf("got %v", f)
	}
}

func TestSubCommands(t *testing.T) {
	executor := NewExecutor()
	var run, tap int
	executor.Define("run", Sub(map[string]*Command{
		"tap": Func(func() {
			tap = 1
		}),
		"steps": Func(func(i int) {
			run = i
		}),
	}))

	if err := executor.Execute([]string{
		"run",
		"tap",
		"steps", "42",
	}); err != nil {
		t.Fatal(err)
	}
	if tap != 1 {
		t.Fatal()
	}
	if run != 42 {
		t.Fatal()
	}
}

func TestDuplicatedSubCommand(t *testing.T) {
	executor := NewExecutor()
	executor.Define("foo", Sub(map[string]*Command{
		"a": nil,
	}))
	executor.Define("bar", Sub(map[string]*Command{
		"a": nil,
	}))
	err := executor.Execute([]string{"foo", "bar"})
	if err == nil || !strings.Contains(err.Error(), "duplicated sub command: bar a") {
		t.Fatalf("got %v", err)
	}
}

func TestOptionalArgument(t *testing.T) {
	executor := NewExecutor()
	var n int
	var s string
	executor.Define("foo", Func(func(arg *int, arg2 *string) {
		n = *arg
		s = *arg2
	}))

	if err := executor.Execute([]string{"foo", "42", "bar"}); err != nil {
		t.Fatal(err)
	}
	if n != 42 || s != "bar" {
		t.Fatalf("got %v %q", n, s)
	}

	if err := executor.Execute([]string{"foo"}); err != nil {
		t.Fatal(err)
	}
	if n != 0 || s != "" {
		t.Fatalf("got %v %q", n, s)
	}
}

func TestUsage(t *testing.T) {
	executor := NewExecutor()
	buf := new(bytes.Buffer)
	executor.output = buf
	executor.Define("serve", Sub(map[string]*Command{
		"unix": Func(func(path string) {}).Desc("listen on a unix socket"),
	}).Desc("start the daemon"))
	executor.PrintUsage()
	out := buf.String()
	if !strings.Contains(out, "serve\tstart the daemon") {
		t.Fatalf("got %s", out)
	}
	if !strings.Contains(out, "  unix <string>\tlisten on a unix socket") {
		t.Fatalf("got %s", out)
	}
	if !strings.Contains(out, "--help, -h, -help, help\tprint this usage") {
		t.Fatalf("got %s", out)
	}
}
