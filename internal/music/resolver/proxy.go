package resolver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"golang.org/x/net/proxy"
)

// proxyTransport builds an HTTP transport for an http(s), socks5 or socks4
// proxy URL. socks4 is registered with x/net/proxy by go-socks4.
func proxyTransport(proxyStr string) (*http.Transport, error) {
	u, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("parse proxy: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q has no host", redactProxy(proxyStr))
	}

	switch u.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(u)}, nil
	case "socks5", "socks5h", "socks4", "socks4a":
		dialer, err := proxy.FromURL(u, &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 10 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("%s dialer: %w", u.Scheme, err)
		}
		return &http.Transport{DialContext: dialContext(dialer)}, nil
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
}

func dialContext(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}

// redactProxy hides proxy credentials before logging.
func redactProxy(proxyStr string) string {
	u, err := url.Parse(proxyStr)
	if err != nil || u.User == nil {
		return proxyStr
	}
	return u.Redacted()
}
