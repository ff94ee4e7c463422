// Package servers serves the registry over a stream socket.
package servers

import (
	"github.com/reusee/dscope"
	"github.com/reusee/e5"
	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/metrics"
	"github.com/reusee/taibf/schemes"
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

type Module struct {
	dscope.Module
	Schemes schemes.Module
}

func (Module) Server(
	registry *schemes.Registry,
	logger logs.Logger,
	newSpan logs.NewSpan,
	m *metrics.Metrics,
	rateLimit bfconfigs.RateLimit,
) *Server {
	return &Server{
		registry:  registry,
		logger:    logger,
		newSpan:   newSpan,
		metrics:   m,
		rateLimit: rateLimit,
		conns:     make(map[*conn]struct{}),
	}
}
