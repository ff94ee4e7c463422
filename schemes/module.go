// Package schemes maps handle ids to running sessions and dispatches
// open, read, write and close on them.
package schemes

import (
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/sessions"
)

type Module struct {
	dscope.Module
	Sessions  sessions.Module
	BFConfigs bfconfigs.Module
}

func (Module) Registry(
	newSession sessions.New,
	maxSessions bfconfigs.MaxSessions,
	closeTimeout bfconfigs.CloseTimeout,
	logger logs.Logger,
) *Registry {
	return New(newSession, int(maxSessions), time.Duration(closeTimeout), logger)
}
