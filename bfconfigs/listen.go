package bfconfigs

import (
	"os"
	"path/filepath"

	"github.com/reusee/taibf/cmds"
	"github.com/reusee/taibf/configs"
	"github.com/reusee/taibf/vars"
)

// Listen is the address the daemon serves on and the client dials.
type Listen struct {
	Network string
	Addr    string
}

func (l Listen) String() string {
	return l.Network + ":" + l.Addr
}

var (
	listenNetworkFlag = cmds.Var[string]("-network")
	listenAddrFlag    = cmds.Var[string]("-addr")
)

func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "taibf.sock")
	}
	return filepath.Join(os.TempDir(), "taibf.sock")
}

func (Module) Listen(
	loader configs.Loader,
) Listen {
	network := vars.FirstNonZero(
		*listenNetworkFlag,
		configs.First[string](loader, "listen_network"),
		"unix",
	)
	addr := vars.FirstNonZero(
		*listenAddrFlag,
		configs.First[string](loader, "listen_addr"),
	)
	if addr == "" {
		if network == "unix" {
			addr = DefaultSocketPath()
		} else {
			addr = "127.0.0.1:7411"
		}
	}
	return Listen{
		Network: network,
		Addr:    addr,
	}
}

type MetricsAddr string

var metricsAddrFlag = cmds.Var[string]("-metrics")

func (Module) MetricsAddr(
	loader configs.Loader,
) MetricsAddr {
	return vars.FirstNonZero(
		MetricsAddr(*metricsAddrFlag),
		configs.First[MetricsAddr](loader, "metrics_addr"),
	)
}

type ProxyAddr string

func (Module) ProxyAddr(
	loader configs.Loader,
) ProxyAddr {
	return vars.FirstNonZero(
		configs.First[ProxyAddr](loader, "proxy_addr"),
		ProxyAddr(os.Getenv("ALL_PROXY")),
		ProxyAddr(os.Getenv("all_proxy")),
	)
}
