package peer_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puizinam/go-udp-hub/internal/hub"
	"github.com/puizinam/go-udp-hub/internal/logging"
	"github.com/puizinam/go-udp-hub/internal/peer"
	"github.com/puizinam/go-udp-hub/internal/protocol"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Count(s string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), s)
}

// unsendableConn fails every send, like a host without a route to the hub.
type unsendableConn struct {
	net.PacketConn
}

func (unsendableConn) WriteTo([]byte, net.Addr) (int, error) {
	return 0, errors.New("network is unreachable")
}

func listenUDP(t *testing.T) net.PacketConn {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testConfig() peer.Config {
	cfg := peer.DefaultConfig()
	cfg.InitialTimeout = 20 * time.Millisecond
	cfg.MaxTimeout = 100 * time.Millisecond
	cfg.BackoffMultiplier = 2
	cfg.RegisterPause = 0
	return cfg
}

func readControl(t *testing.T, conn net.PacketConn) protocol.Control {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buffer := make([]byte, 64)
	n, _, err := conn.ReadFrom(buffer)
	require.NoError(t, err)
	control, err := protocol.ParseControl(buffer[:n])
	require.NoError(t, err)
	return control
}

func TestListenGrowsTimeoutDuringSilence(t *testing.T) {
	cfg := testConfig()
	var results []peer.WaitResult
	c := peer.New(3, listenUDP(t), listenUDP(t).LocalAddr(), cfg,
		peer.WithWaitHook(func(r peer.WaitResult) { results = append(results, r) }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()
	assert.Zero(t, c.Listen(ctx))

	// 20ms initial: waits of 20+40+80+100 already exceed 200ms, so at least four timeouts happened.
	require.GreaterOrEqual(t, len(results), 4)
	want := cfg.InitialTimeout
	for i, r := range results {
		want *= 2
		if want > cfg.MaxTimeout {
			want = cfg.MaxTimeout
		}
		assert.False(t, r.Received)
		assert.Equal(t, want, r.Next, "timeout #%d", i+1)
	}
}

func TestListenResetsTimeoutOnReceive(t *testing.T) {
	cfg := testConfig()
	conn := listenUDP(t)
	sender := listenUDP(t)

	results := make(chan peer.WaitResult, 64)
	c := peer.New(3, conn, sender.LocalAddr(), cfg,
		peer.WithWaitHook(func(r peer.WaitResult) { results <- r }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- c.Listen(ctx) }()

	var last peer.WaitResult
	for range 3 {
		last = <-results
		require.False(t, last.Received)
	}
	assert.Equal(t, cfg.MaxTimeout, last.Next, "20ms -> 40ms -> 80ms -> capped at 100ms")

	_, err := sender.WriteTo(protocol.BroadcastPayload(time.Now()), conn.LocalAddr())
	require.NoError(t, err)
	for r := range results {
		if r.Received {
			assert.Equal(t, cfg.InitialTimeout, r.Next)
			break
		}
	}

	cancel()
	select {
	case count := <-done:
		assert.Equal(t, 1, count)
	case <-time.After(time.Second):
		t.Fatal("listen did not stop")
	}
}

func TestRunRegistersThenUnregisters(t *testing.T) {
	server := listenUDP(t)
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	c := peer.New(7, conn, server.LocalAddr(), testConfig(),
		peer.WithRuntime(func() time.Duration { return 50 * time.Millisecond }),
	)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, protocol.Register(c.ID()), readControl(t, server))
	assert.Equal(t, protocol.Unregister(c.ID()), readControl(t, server))
	assert.EqualValues(t, 7, c.ID())

	_, err = conn.WriteTo([]byte("x"), server.LocalAddr())
	assert.ErrorIs(t, err, net.ErrClosed, "socket is released")
}

func TestRunUnregistersOnInterrupt(t *testing.T) {
	server := listenUDP(t)
	c := peer.New(11, listenUDP(t), server.LocalAddr(), testConfig(),
		peer.WithRuntime(func() time.Duration { return time.Hour }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Equal(t, protocol.Register(11), readControl(t, server))
	cancel()
	assert.Equal(t, protocol.Unregister(11), readControl(t, server))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
}

func TestRunSurvivesSendFailures(t *testing.T) {
	var logs syncBuffer
	conn := unsendableConn{listenUDP(t)}
	c := peer.New(5, conn, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, testConfig(),
		peer.WithLogger(logging.New(logging.WithWriter(&logs))),
		peer.WithRuntime(func() time.Duration { return 30 * time.Millisecond }),
	)

	assert.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 1, logs.Count("Failed to send registration"))
	assert.Equal(t, 1, logs.Count("Failed to send unregistration"))
	assert.Equal(t, 1, logs.Count("Finished listening for messages"))
}

func TestPeerAgainstHub(t *testing.T) {
	var hubLogs syncBuffer
	hubConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	h := hub.New(hubConn, hub.DefaultConfig(),
		hub.WithLogger(logging.New(logging.WithWriter(&hubLogs))),
		hub.WithReadTimeout(50*time.Millisecond),
		hub.WithIntervals(30*time.Millisecond, 60*time.Millisecond),
	)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan error, 1)
	go func() { hubDone <- h.Run(hubCtx) }()

	cfg := testConfig()
	results := make(chan peer.WaitResult, 256)
	c := peer.New(7, listenUDP(t), h.Addr(), cfg,
		peer.WithRuntime(func() time.Duration { return time.Hour }),
		peer.WithWaitHook(func(r peer.WaitResult) {
			select {
			case results <- r:
			default:
			}
		}),
	)
	peerCtx, stopPeer := context.WithCancel(context.Background())
	peerDone := make(chan error, 1)
	go func() { peerDone <- c.Run(peerCtx) }()

	deadline := time.After(3 * time.Second)
	for received := false; !received; {
		select {
		case r := <-results:
			if r.Received {
				assert.Equal(t, cfg.InitialTimeout, r.Next)
				received = true
			}
		case <-deadline:
			t.Fatal("peer never received a broadcast")
		}
	}
	_, registered := h.Registry().Lookup(7)
	assert.True(t, registered)

	stopPeer()
	require.NoError(t, <-peerDone)
	require.Eventually(t, func() bool { return h.Registry().Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	skipped := hubLogs.Count("No clients registered")
	require.Eventually(t, func() bool { return hubLogs.Count("No clients registered") > skipped }, 2*time.Second, 10*time.Millisecond)

	stopHub()
	assert.NoError(t, <-hubDone)
}

func TestConfig(t *testing.T) {
	cfg := peer.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddr())
	assert.Equal(t, "client_42_log.txt", cfg.LogFile(42))

	broken := []func(*peer.Config){
		func(c *peer.Config) { c.ServerPort = 0 },
		func(c *peer.Config) { c.BufferSize = 0 },
		func(c *peer.Config) { c.InitialTimeout = 0 },
		func(c *peer.Config) { c.MaxTimeout = 100 * time.Millisecond },
		func(c *peer.Config) { c.BackoffMultiplier = 0.9 },
		func(c *peer.Config) { c.MinRuntime = 2 * time.Minute },
		func(c *peer.Config) { c.RegisterPause = -time.Second },
	}
	for i, mutate := range broken {
		cfg := peer.DefaultConfig()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), peer.ErrInvalidConfig, "case %d", i)
	}
}
