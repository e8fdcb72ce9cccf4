package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liftoff/internal/framework"
)

// WebServer is one control-service instance bound to a single candidate
// address.
type WebServer struct {
	addr     *net.TCPAddr
	listener net.Listener
	server   *http.Server
}

// NewWebServer binds addr. The bind happens here so a lost port race
// surfaces immediately; serving starts when the instance is handed to
// Servers.
func NewWebServer(handler http.Handler, addr *net.TCPAddr) (*WebServer, error) {
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return &WebServer{
		addr:     addr,
		listener: l,
		server:   &http.Server{Handler: handler},
	}, nil
}

// Addr reports the bound address.
func (s *WebServer) Addr() *net.TCPAddr {
	return s.addr
}

// Servers supervises every bound control-service instance.
type Servers struct {
	group     *errgroup.Group
	instances []*WebServer
}

// StartAll builds one router over the shared handle and starts an instance
// on every candidate that binds. Individual bind failures are logged and
// tolerated; zero successful binds is an error the caller treats as fatal.
func StartAll(handle *framework.Handle, addrs []*net.TCPAddr, logger *zap.Logger) (*Servers, error) {
	handler := Router(handle, logger)

	servers := &Servers{group: &errgroup.Group{}}
	for _, addr := range addrs {
		ws, err := NewWebServer(handler, addr)
		if err != nil {
			logger.Warn("skipping unbindable candidate", zap.String("addr", addr.String()), zap.Error(err))
			continue
		}
		logger.Debug("control service bound", zap.String("addr", addr.String()))
		servers.instances = append(servers.instances, ws)

		srv := ws
		servers.group.Go(func() error {
			if err := srv.server.Serve(srv.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.addr, err)
			}
			return nil
		})
	}

	if len(servers.instances) == 0 {
		return nil, fmt.Errorf("no bindable loopback address among %d candidates", len(addrs))
	}
	return servers, nil
}

// Addrs reports every bound address.
func (s *Servers) Addrs() []*net.TCPAddr {
	addrs := make([]*net.TCPAddr, 0, len(s.instances))
	for _, ws := range s.instances {
		addrs = append(addrs, ws.Addr())
	}
	return addrs
}

// Shutdown stops every instance and waits for their serve loops to exit.
func (s *Servers) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, ws := range s.instances {
		if err := ws.server.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.group.Wait(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
