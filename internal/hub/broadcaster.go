package hub

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/puizinam/go-udp-hub/internal/logging"
	"github.com/puizinam/go-udp-hub/internal/protocol"
	"github.com/puizinam/go-udp-hub/internal/registry"
)

// Broadcaster periodically sends a timestamped message to every registered peer.
type Broadcaster struct {
	conn     net.PacketConn
	registry *registry.Registry
	log      *slog.Logger
	interval func() time.Duration
	now      func() time.Time
}

func NewBroadcaster(conn net.PacketConn, reg *registry.Registry, opts ...Option) *Broadcaster {
	o := newOptions(opts)
	return &Broadcaster{
		conn:     conn,
		registry: reg,
		log:      o.log.With(logging.Component("broadcaster")),
		interval: o.interval,
		now:      o.now,
	}
}

// Run sleeps a random interval, broadcasts, and repeats until ctx is done. The sleep ends early when
// ctx is cancelled, in which case nothing more is sent.
func (b *Broadcaster) Run(ctx context.Context) error {
	b.log.Info("Starting periodic message sender...")
	for {
		interval := b.interval()
		b.log.Info("Sending periodic message", logging.Duration(interval))
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return nil
		}
		b.Broadcast(b.now())
	}
}

// Broadcast sends one payload stamped with now to every peer in a registry snapshot and returns how many
// sends succeeded. A failed send is logged and the remaining peers are still tried.
func (b *Broadcaster) Broadcast(now time.Time) int {
	peers := b.registry.Snapshot()
	if len(peers) == 0 {
		b.log.Info("No clients registered")
		return 0
	}
	payload := protocol.BroadcastPayload(now)
	b.log.Info("Sending message to clients", logging.Count(len(peers)), slog.String("message", string(payload)))

	sent := 0
	for id, peer := range peers {
		if _, err := b.conn.WriteTo(payload, peer.Addr); err != nil {
			b.log.Error("Failed to send message to client", logging.Peer(id), logging.Addr(peer.Addr), logging.Error(err))
			continue
		}
		b.log.Debug("Sent to client", logging.Peer(id), logging.Addr(peer.Addr))
		sent++
	}
	return sent
}
