// Package hub implements the registration-and-broadcast server.
//
// Peers register and unregister with two-token ASCII datagrams (see package protocol). The hub keeps
// the latest source address of every registered peer and, on a randomised interval, sends each of them
// a timestamped message. A Listener and a Broadcaster run concurrently on one socket and share one
// registry; a Server starts both and stops them when its context is cancelled.
package hub

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/puizinam/go-udp-hub/internal/logging"
	"github.com/puizinam/go-udp-hub/internal/registry"
)

type Server struct {
	conn          net.PacketConn
	registry      *registry.Registry
	listener      *Listener
	broadcaster   *Broadcaster
	log           *slog.Logger
	shutdownGrace time.Duration
}

// New builds a hub on conn. The server takes ownership of conn and closes it when Run returns.
// Options given after cfg override the values derived from it.
func New(conn net.PacketConn, cfg Config, opts ...Option) *Server {
	opts = append(configOptions(cfg), opts...)
	o := newOptions(opts)
	reg := registry.New()
	return &Server{
		conn:          conn,
		registry:      reg,
		listener:      NewListener(conn, reg, opts...),
		broadcaster:   NewBroadcaster(conn, reg, opts...),
		log:           o.log.With(logging.Component("server")),
		shutdownGrace: o.shutdownGrace,
	}
}

func (s *Server) Registry() *registry.Registry {
	return s.registry
}

func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Run starts the listener and the broadcaster and blocks until ctx is cancelled (or one of them fails).
// It then gives both tasks the shutdown grace period to return; a task that is still running after that
// is abandoned. The socket is closed in every case.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("Server started", logging.Addr(s.conn.LocalAddr()))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.listener.Run(egCtx) })
	eg.Go(func() error { return s.broadcaster.Run(egCtx) })

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	<-egCtx.Done()
	s.log.Info("Stopping server...")

	var err error
	select {
	case err = <-done:
	case <-time.After(s.shutdownGrace):
		err = ErrShutdownTimeout
		s.log.Warn("Proceeding with shutdown", logging.Error(err), logging.Duration(s.shutdownGrace))
	}

	if closeErr := s.conn.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		err = errors.Join(err, closeErr)
	}
	s.log.Info("Server stopped")
	return err
}
