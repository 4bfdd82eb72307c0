// ABOUTME: Outbound dialing for platform traffic, optionally through an SSH+SOCKS5 jump host
// ABOUTME: Shared by the platform HTTP client and the danmaku websocket dialer

package services

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// DialContextFunc matches net.Dialer.DialContext
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// NewProxyDialer builds a dial function for an SSH+SOCKS5 proxy URL.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
// An empty allProxy returns a nil dialer (direct connections).
func NewProxyDialer(allProxy string) (DialContextFunc, error) {
	if allProxy == "" {
		return nil, nil
	}

	proxyURL, err := url.Parse(strings.TrimPrefix(allProxy, "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" || proxyURL.Host == "" {
		return nil, fmt.Errorf("proxy URL must be ssh+socks5://user@host:port")
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, fmt.Errorf("proxy URL missing required 'private-key' query param")
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading proxy private key: %w", err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	// The SSH tunnel is opened on first use and shared afterwards
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mut.RLock()
		d := dialer
		mut.RUnlock()
		if d != nil {
			return dialContext(ctx, d, network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialContext(ctx, dialer, network, address)
	}, nil
}

type dialResult struct {
	conn net.Conn
	err  error
}

// dialContext runs a context-unaware dial so the caller can give up when
// ctx ends. A connection that completes after that is closed.
func dialContext(ctx context.Context, dial proxy.DialFunc, network, address string) (net.Conn, error) {
	done := make(chan dialResult, 1)
	go func() {
		conn, err := dial(network, address)
		done <- dialResult{conn, err}
	}()

	select {
	case res := <-done:
		return res.conn, res.err
	case <-ctx.Done():
		go func() {
			if res := <-done; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// NewHTTPClient returns an HTTP client that dials through dial when non-nil.
func NewHTTPClient(timeout time.Duration, dial DialContextFunc) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if dial != nil {
		transport.Proxy = nil
		transport.DialContext = dial
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
