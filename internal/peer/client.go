// Package peer implements the client side of the hub: register, listen for broadcasts with an adaptive
// timeout for a while, unregister, release the socket.
package peer

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net"
	"time"

	"github.com/puizinam/go-udp-hub/internal/backoff"
	"github.com/puizinam/go-udp-hub/internal/logging"
	"github.com/puizinam/go-udp-hub/internal/protocol"
	"github.com/puizinam/go-udp-hub/internal/registry"
)

// WaitResult describes how one receive attempt ended and the timeout the next attempt will use.
type WaitResult struct {
	Received bool
	Next     time.Duration
}

type Client struct {
	id            registry.PeerID
	conn          net.PacketConn
	server        net.Addr
	timer         *backoff.Timer
	log           *slog.Logger
	bufferSize    int
	registerPause time.Duration
	runtime       func() time.Duration
	onWait        func(WaitResult)
}

type Option func(*Client)

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRuntime replaces the random listening duration drawn from the configured range.
func WithRuntime(fn func() time.Duration) Option {
	return func(c *Client) { c.runtime = fn }
}

// WithWaitHook calls fn after every receive attempt that ended in a datagram or a timeout.
func WithWaitHook(fn func(WaitResult)) Option {
	return func(c *Client) { c.onWait = fn }
}

// New builds a peer that talks to server over conn. The client owns conn and closes it when Run returns.
func New(id registry.PeerID, conn net.PacketConn, server net.Addr, cfg Config, opts ...Option) *Client {
	c := &Client{
		id:            id,
		conn:          conn,
		server:        server,
		timer:         backoff.NewTimer(cfg.InitialTimeout, cfg.MaxTimeout, cfg.BackoffMultiplier),
		log:           logging.Discard(),
		bufferSize:    cfg.BufferSize,
		registerPause: cfg.RegisterPause,
		runtime:       randomDuration(cfg.MinRuntime, cfg.MaxRuntime),
		onWait:        func(WaitResult) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logging.Peer(id))
	return c
}

func (c *Client) ID() registry.PeerID {
	return c.id
}

// Run registers, listens for a randomly chosen runtime, unregisters and closes the socket. Cancelling
// ctx ends the listening phase early; the peer still unregisters before the socket is released.
// The returned error only reports a failure to close the socket.
func (c *Client) Run(ctx context.Context) error {
	c.log.Info("Client started", logging.Addr(c.conn.LocalAddr()))
	defer c.log.Info("Client terminated.")

	c.Register()
	if sleep(ctx, c.registerPause) {
		runtime := c.runtime()
		c.log.Info("Listening for messages", slog.Duration("runtime", runtime))
		listenCtx, cancel := context.WithTimeout(ctx, runtime)
		c.Listen(listenCtx)
		cancel()
	}
	if ctx.Err() != nil {
		c.log.Info("Received user interrupt.")
	}
	c.Unregister()

	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Register sends "R <id>". A successful send only means the datagram left this host.
func (c *Client) Register() error {
	return c.sendControl(protocol.Register(c.id), "registration")
}

// Unregister sends "U <id>".
func (c *Client) Unregister() error {
	return c.sendControl(protocol.Unregister(c.id), "unregistration")
}

func (c *Client) sendControl(control protocol.Control, what string) error {
	_, err := c.conn.WriteTo(control.Bytes(), c.server)
	if err != nil {
		c.log.Error("Failed to send "+what+" to server", logging.Addr(c.server), logging.Error(err))
		return err
	}
	c.log.Info("Sent "+what+" to server", slog.String("message", control.String()))
	return nil
}

// Listen receives datagrams until ctx is done and returns how many arrived. Each read waits for the
// backoff timer's current timeout: a silent wait grows the timeout, any datagram resets it.
func (c *Client) Listen(ctx context.Context) int {
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buffer := make([]byte, c.bufferSize)
	count := 0
	for {
		err := c.conn.SetReadDeadline(time.Now().Add(c.timer.Current()))
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			c.log.Error("Failed to set read deadline", logging.Error(err))
			continue
		}
		n, _, err := c.conn.ReadFrom(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			if isTimeout(err) {
				c.onWait(WaitResult{Received: false, Next: c.timer.Timeout()})
				continue
			}
			c.log.Error("Error receiving message", logging.Error(err))
			continue
		}
		count++
		c.log.Info("Received message from server", slog.Int("number", count), slog.String("message", string(buffer[:n])))
		c.onWait(WaitResult{Received: true, Next: c.timer.Success()})
	}
	c.log.Info("Finished listening for messages", logging.Count(count))
	return count
}

// sleep waits for d and reports whether it ran to completion (false when ctx ended it).
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func randomDuration(min, max time.Duration) func() time.Duration {
	if max < min {
		min, max = max, min
	}
	return func() time.Duration {
		return min + rand.N(max-min+1)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
