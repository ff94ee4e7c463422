package clients

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/nets"
)

type Module struct {
	dscope.Module
	Nets nets.Module
}

// Connect dials the configured daemon address.
type Connect func(ctx context.Context) (*Client, error)

func (Module) Connect(
	dialer nets.Dialer,
	listen bfconfigs.Listen,
) Connect {
	return func(ctx context.Context) (*Client, error) {
		return Dial(ctx, dialer, listen.Network, listen.Addr)
	}
}
