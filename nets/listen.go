package nets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/logs"
	"golang.org/x/net/netutil"
)

// Listen opens the configured listener, accepting at most MaxConns
// connections at a time.
type Listen func(ctx context.Context) (net.Listener, error)

func (Module) Listen(
	listen bfconfigs.Listen,
	maxConns bfconfigs.MaxConns,
	logger logs.Logger,
) Listen {
	return func(ctx context.Context) (net.Listener, error) {
		if listen.Network == "unix" {
			if err := removeStaleSocket(listen.Addr); err != nil {
				return nil, err
			}
		}
		var config net.ListenConfig
		ln, err := config.Listen(ctx, listen.Network, listen.Addr)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", listen, err)
		}
		if maxConns > 0 {
			ln = netutil.LimitListener(ln, int(maxConns))
		}
		logger.InfoContext(ctx, "listening",
			"addr", ln.Addr().String(),
			"max_conns", int(maxConns),
		)
		return ln, nil
	}
}

// a socket file nobody accepts on is left over from a previous run
func removeStaleSocket(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	conn, err := net.Dial("unix", path)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%s is in use", path)
	}
	return os.Remove(path)
}
