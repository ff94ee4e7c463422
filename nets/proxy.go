package nets

import (
	"context"
	"net"
	"net/url"
	"sync"

	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/modes"
	"golang.org/x/net/proxy"
)

type GetProxyURL func() (*url.URL, error)

func (Module) GetProxyURL(
	mode modes.Mode,
	proxyAddr bfconfigs.ProxyAddr,
) GetProxyURL {
	return sync.OnceValues(func() (*url.URL, error) {
		if proxyAddr == "" || mode == modes.ModeDevelopment {
			return nil, nil
		}
		u, err := url.Parse(string(proxyAddr))
		if err != nil {
			return nil, err
		}
		if u.Scheme == "socks" {
			u.Scheme = "socks5"
		}
		return u, nil
	})
}

type GetProxyDialer func() (Dialer, error)

func (Module) GetProxyDialer(
	getURL GetProxyURL,
	logger logs.Logger,
) GetProxyDialer {
	direct := any(&net.Dialer{}).(Dialer)
	return sync.OnceValues(func() (Dialer, error) {
		u, err := getURL()
		if err != nil {
			return nil, err
		}
		if u == nil {
			return direct, nil
		}
		logger.Info("proxy", "url", u.Redacted())
		proxyDialer, err := proxy.FromURL(u, direct)
		if err != nil {
			return nil, err
		}
		if d, ok := proxyDialer.(Dialer); ok {
			return d, nil
		}
		return DialerFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
			return proxyDialer.Dial(network, addr)
		}), nil
	})
}
