package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/puizinam/go-udp-hub/internal/logging"
	"github.com/puizinam/go-udp-hub/internal/protocol"
	"github.com/puizinam/go-udp-hub/internal/registry"
)

// Listener owns the inbound side of the hub's socket. It turns control messages into registry updates.
type Listener struct {
	conn        net.PacketConn
	registry    *registry.Registry
	log         *slog.Logger
	bufferSize  int
	readTimeout time.Duration
}

func NewListener(conn net.PacketConn, reg *registry.Registry, opts ...Option) *Listener {
	o := newOptions(opts)
	return &Listener{
		conn:        conn,
		registry:    reg,
		log:         o.log.With(logging.Component("listener")),
		bufferSize:  o.bufferSize,
		readTimeout: o.readTimeout,
	}
}

// Run reads datagrams until ctx is done. Each read waits at most the read timeout so the loop keeps
// re-checking ctx; cancelling ctx also pulls the current deadline in so the pending read returns at once.
// Malformed datagrams and read failures are logged and skipped. Run returns nil on shutdown and an error
// only when the socket is closed underneath it while ctx is still live.
func (l *Listener) Run(ctx context.Context) error {
	l.log.Info("Listening for messages from peers...")
	stop := context.AfterFunc(ctx, func() {
		l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buffer := make([]byte, l.bufferSize)
	for {
		// The deadline is set before checking ctx: a cancellation after the check has already moved it.
		err := l.conn.SetReadDeadline(time.Now().Add(l.readTimeout))
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return l.socketFailure(ctx, err)
		}
		n, senderAddr, err := l.conn.ReadFrom(buffer)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				return nil // The socket was torn down by shutdown
			}
			if errors.Is(err, net.ErrClosed) {
				return l.socketFailure(ctx, err)
			}
			l.log.Error("Failed to read a datagram", logging.Addr(senderAddr), logging.Error(err))
			continue
		}
		l.Handle(buffer[:n], senderAddr)
	}
}

// Handle applies a single datagram received from senderAddr.
func (l *Listener) Handle(data []byte, senderAddr net.Addr) {
	l.log.Debug("Received message", slog.String("message", string(data)), logging.Addr(senderAddr))
	control, err := protocol.ParseControl(data)
	if err != nil {
		l.log.Warn("Dropped datagram", logging.Addr(senderAddr), logging.Error(err))
		return
	}
	switch control.Command {
	case protocol.CommandRegister:
		l.registry.Register(control.PeerID, senderAddr)
		l.log.Info("Client registered", logging.Peer(control.PeerID), logging.Addr(senderAddr))
	case protocol.CommandUnregister:
		if l.registry.Unregister(control.PeerID) {
			l.log.Info("Client unregistered", logging.Peer(control.PeerID), logging.Addr(senderAddr))
		} else {
			l.log.Info("Client not found for unregistration", logging.Peer(control.PeerID), logging.Addr(senderAddr))
		}
	}
}

func (l *Listener) socketFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("listener socket failed: %w", err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
