package bfconfigs

import (
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/configs"
	"github.com/reusee/taibf/modes"
)

func TestDefaults(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, schema)
		},
	).Call(func(
		listen Listen,
		maxSessions MaxSessions,
		maxConns MaxConns,
		closeTimeout CloseTimeout,
		rateLimit RateLimit,
		metricsAddr MetricsAddr,
	) {
		if listen.Network != "unix" || listen.Addr != DefaultSocketPath() {
			t.Fatalf("got %v", listen)
		}
		if maxSessions != 1024 {
			t.Fatalf("got %v", maxSessions)
		}
		if maxConns != 64 {
			t.Fatalf("got %v", maxConns)
		}
		if time.Duration(closeTimeout) != time.Second {
			t.Fatalf("got %v", closeTimeout)
		}
		if rateLimit.RPS != 0 {
			t.Fatalf("got %v", rateLimit)
		}
		if metricsAddr != "" {
			t.Fatalf("got %v", metricsAddr)
		}
	})
}

func TestConfigFile(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader([]string{"testdata/bf.cue"}, schema)
		},
	).Call(func(
		listen Listen,
		maxSessions MaxSessions,
		closeTimeout CloseTimeout,
		rateLimit RateLimit,
	) {
		if listen.String() != "tcp:127.0.0.1:9000" {
			t.Fatalf("got %v", listen)
		}
		if maxSessions != 8 {
			t.Fatalf("got %v", maxSessions)
		}
		if time.Duration(closeTimeout) != 250*time.Millisecond {
			t.Fatalf("got %v", closeTimeout)
		}
		if rateLimit.RPS != 10 || rateLimit.Burst != 20 {
			t.Fatalf("got %v", rateLimit)
		}
	})
}

func TestSchemaRejectsUnknownField(t *testing.T) {
	loader := configs.NewLoader([]string{"testdata/bad.cue"}, schema)
	var n int
	if err := loader.AssignFirst("max_sessions", &n); err == nil {
		t.Fatal("should error")
	}
}
