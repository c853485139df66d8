// Package safehttp provides the outbound transport used for calls made
// with tenant-supplied credentials.
package safehttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// SafeTransport rejects connections to loopback, private, and link-local
// addresses so a misconfigured or tenant-influenced API base cannot reach
// internal infrastructure.
var SafeTransport = &http.Transport{
	DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialer := &net.Dialer{Timeout: 5 * time.Second}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
		ip := net.ParseIP(host)
		if ip == nil {
			conn.Close()
			return nil, fmt.Errorf("failed to parse remote IP for %q", addr)
		}

		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			conn.Close()
			return nil, fmt.Errorf("access to private IP %s is denied", ip)
		}

		return conn, nil
	},
}
