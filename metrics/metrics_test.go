package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reusee/dscope"
)

func TestMetrics(t *testing.T) {
	dscope.New(
		new(Module),
	).Call(func(
		m *Metrics,
	) {
		m.SessionOpened()
		m.SessionOpened()
		m.SessionClosed()
		m.Terminated("completed")
		m.InputBytes(3)
		m.InputBytes(-1)
		m.OutputBytes(5)
		m.Request("open", "ok")

		if v := testutil.ToFloat64(m.SessionsOpened); v != 2 {
			t.Fatalf("got %v", v)
		}
		if v := testutil.ToFloat64(m.SessionsActive); v != 1 {
			t.Fatalf("got %v", v)
		}
		if v := testutil.ToFloat64(m.Terminations.WithLabelValues("completed")); v != 1 {
			t.Fatalf("got %v", v)
		}
		if v := testutil.ToFloat64(m.BytesIn); v != 3 {
			t.Fatalf("got %v", v)
		}

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		body, err := io.ReadAll(rec.Body)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(body), "taibf_output_bytes_total 5") {
			t.Fatalf("got %s", body)
		}
	})
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.SessionOpened()
	m.SessionClosed()
	m.Terminated("completed")
	m.InputBytes(1)
	m.OutputBytes(1)
	m.Request("read", "ok")
	m.ConnectionOpened()
	m.ConnectionClosed()
}
