// Package echo provides a TCP echo server and a round-trip latency benchmark that runs against it.
package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/puizinam/go-udp-hub/internal/logging"
)

type Config struct {
	Host   string `env:"ECHO_SERVER_HOST" envDefault:"127.0.0.1"`
	Port   int    `env:"ECHO_SERVER_PORT" envDefault:"65432"`
	Trials int    `env:"NUMBER_OF_TRIALS" envDefault:"10"`
}

func DefaultConfig() Config {
	return Config{Host: "127.0.0.1", Port: 65432, Trials: 10}
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: number of trials must be positive", ErrInvalidConfig)
	}
	return nil
}

// Server echoes every byte it reads on a connection back to the sender.
type Server struct {
	listener net.Listener
	log      *slog.Logger
}

func NewServer(listener net.Listener, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{listener: listener, log: log.With(logging.Component("echo"))}
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled. Shutdown closes the listener and every open
// connection; Serve returns once all connection goroutines are gone.
func (s *Server) Serve(ctx context.Context) error {
	var wgConns sync.WaitGroup
	stop := context.AfterFunc(ctx, func() {
		s.log.Info("Listener closed")
		s.listener.Close()
	})
	defer stop()

	s.log.Info("Listening for connections...", logging.Addr(s.listener.Addr()))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// Listener was closed by server shutdown
				wgConns.Wait()
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			s.log.Error("Failed to accept a connection", logging.Error(err))
			continue
		}
		s.log.Info("Established a connection", logging.Addr(conn.RemoteAddr()))
		wgConns.Add(1)
		go s.handle(ctx, conn, &wgConns)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn, wgConns *sync.WaitGroup) {
	defer wgConns.Done()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	buffer := make([]byte, 1024)
	for {
		n, err := conn.Read(buffer)
		if n > 0 {
			if _, werr := conn.Write(buffer[:n]); werr != nil {
				err = werr
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, net.ErrClosed) {
			s.log.Info("Closed connection", logging.Addr(conn.RemoteAddr()))
			return
		}
		conn.Close()
		if errors.Is(err, io.EOF) {
			s.log.Info("Connection has been closed by the client", logging.Addr(conn.RemoteAddr()))
		} else {
			s.log.Warn("Connection failed", logging.Addr(conn.RemoteAddr()), logging.Error(err))
		}
		return
	}
}
