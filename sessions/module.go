// Package sessions runs one interpreter per session on its own goroutine and
// exposes its input and output as non-blocking byte streams.
package sessions

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/metrics"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Metrics metrics.Module
}
