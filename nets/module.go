// Package nets provides the dialer and listener of the socket transport.
package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/logs"
)

type Module struct {
	dscope.Module
	BFConfigs bfconfigs.Module
	Logs      logs.Module
}
