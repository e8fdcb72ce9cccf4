// Package endpoint negotiates the loopback endpoint the control service
// binds to: one OS-assigned port, applied to every resolved localhost
// candidate address.
package endpoint

import (
	"context"
	"fmt"
	"net"
)

// ReservePort binds a throwaway listener to port 0 on the loopback
// interface, reads the OS-assigned port, and releases the listener. Another
// process can still claim the port before the real bind; the window is
// narrow and a lost race surfaces as a bind failure downstream.
func ReservePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("reserve loopback port: %w", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		return 0, fmt.Errorf("release reserved port: %w", err)
	}
	return port, nil
}

// Candidates resolves localhost to its full candidate address set (both
// address families where present) and applies port to each. The embedded
// view's HTTP client may prefer either family, so callers bind them all
// rather than guessing one.
func Candidates(ctx context.Context, port int) ([]*net.TCPAddr, error) {
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, "localhost")
	if err != nil {
		return nil, fmt.Errorf("resolve localhost: %w", err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("resolve localhost: no addresses")
	}

	addrs := make([]*net.TCPAddr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, &net.TCPAddr{IP: ip.IP, Zone: ip.Zone, Port: port})
	}
	return addrs, nil
}
