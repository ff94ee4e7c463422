package debugs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/bfvm"
	"github.com/reusee/taibf/modes"
)

func TestTap(t *testing.T) {
	out := new(bytes.Buffer)
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() TapIO {
			return TapIO{
				In: strings.NewReader(strings.Join([]string{
					"foo",
					"x = foo + 1",
					"x",
					"",
					"print(x * 2)",
					"bar",
					"for i in range(2): print(i)",
				}, "\n")),
				Out: out,
			}
		},
	).Call(func(
		tap Tap,
	) {
		if err := tap(t.Context(), "test", map[string]any{
			"foo": 42,
		}); err != nil {
			t.Fatal(err)
		}
	})

	got := out.String()
	for _, expected := range []string{
		"test> 42\n",
		"test> 43\n",
		"test> 86\n",
		"error: ",
		"0\n1\n",
	} {
		if !strings.Contains(got, expected) {
			t.Fatalf("expected %q in %q", expected, got)
		}
	}
}

func TestTapCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() TapIO {
			return TapIO{
				In:  strings.NewReader("1\n"),
				Out: new(bytes.Buffer),
			}
		},
	).Call(func(
		tap Tap,
	) {
		if err := tap(ctx, "test", nil); err != context.Canceled {
			t.Fatalf("got %v", err)
		}
	})
}

func TestTapVM(t *testing.T) {
	vm := bfvm.NewVM[int8]("<+++>++")
	reason, err := vm.Run(t.Context(), bfvm.NewStreamInput(strings.NewReader("")), nil)
	if err != nil {
		t.Fatal(err)
	}

	out := new(bytes.Buffer)
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() TapIO {
			return TapIO{
				In:  strings.NewReader("reason\ncells\ncell(-1)\ncell(5)\ncursor\nlen(program)\n"),
				Out: out,
			}
		},
	).Call(func(
		tap Tap,
	) {
		if err := tap(t.Context(), "vm", VMGlobals(vm, reason)); err != nil {
			t.Fatal(err)
		}
	})

	got := out.String()
	for _, expected := range []string{
		`"completed"`,
		"[3, 2]",
		"vm> 3\n",
		"vm> 0\n",
		"vm> 7\n",
	} {
		if !strings.Contains(got, expected) {
			t.Fatalf("expected %q in %q", expected, got)
		}
	}
}
