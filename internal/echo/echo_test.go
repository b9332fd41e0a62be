package echo_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puizinam/go-udp-hub/internal/echo"
)

func startServer(t *testing.T) (*echo.Server, context.CancelFunc, <-chan error) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := echo.NewServer(listener, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	return s, cancel, done
}

func TestBenchAgainstServer(t *testing.T) {
	s, cancel, done := startServer(t)
	defer cancel()

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	var seen []int
	result, err := echo.Bench(context.Background(), conn, 5, echo.DefaultMessage, func(i int, _ time.Duration) {
		seen = append(seen, i)
	})
	require.NoError(t, err)
	assert.Len(t, result.Trials, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Positive(t, result.Average())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("echo server did not stop")
	}
}

func TestServerEchoesBytes(t *testing.T) {
	s, cancel, _ := startServer(t)
	defer cancel()

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("hello"))
	require.NoError(t, err)
	buffer := make([]byte, 5)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = conn.Read(buffer)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buffer))
}

func TestShutdownClosesOpenConnections(t *testing.T) {
	s, cancel, done := startServer(t)

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = echo.Bench(context.Background(), conn, 1, echo.DefaultMessage, nil)
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("echo server did not stop with a connection open")
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err, "server side of the connection is closed")
}

func TestBenchStopsOnCancel(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := echo.Bench(ctx, client, 3, echo.DefaultMessage, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Trials)
}

func TestBenchResultAverage(t *testing.T) {
	assert.Zero(t, echo.BenchResult{}.Average())
	r := echo.BenchResult{Trials: []time.Duration{time.Millisecond, 3 * time.Millisecond}}
	assert.Equal(t, 2*time.Millisecond, r.Average())
	assert.InDelta(t, 2.0, echo.Milliseconds(r.Average()), 1e-9)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, echo.DefaultConfig().Validate())
	cfg := echo.DefaultConfig()
	cfg.Trials = 0
	assert.ErrorIs(t, cfg.Validate(), echo.ErrInvalidConfig)
	assert.Equal(t, "127.0.0.1:65432", echo.DefaultConfig().Addr())
}
