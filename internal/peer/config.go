package peer

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/puizinam/go-udp-hub/internal/registry"
)

type Config struct {
	ServerHost        string        `env:"HUB_SERVER_HOST" envDefault:"127.0.0.1"`
	ServerPort        int           `env:"HUB_PORT" envDefault:"9999"`
	BufferSize        int           `env:"HUB_BUFFER_SIZE" envDefault:"1024"`
	InitialTimeout    time.Duration `env:"PEER_INITIAL_TIMEOUT" envDefault:"500ms"`
	MaxTimeout        time.Duration `env:"PEER_MAX_TIMEOUT" envDefault:"5s"`
	BackoffMultiplier float64       `env:"PEER_BACKOFF_MULTIPLIER" envDefault:"1.5"`
	MinRuntime        time.Duration `env:"PEER_MIN_RUNTIME" envDefault:"15s"`
	MaxRuntime        time.Duration `env:"PEER_MAX_RUNTIME" envDefault:"90s"`
	RegisterPause     time.Duration `env:"PEER_REGISTER_PAUSE" envDefault:"500ms"`
	LogDir            string        `env:"PEER_LOG_DIR" envDefault:"."`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		ServerHost:        "127.0.0.1",
		ServerPort:        9999,
		BufferSize:        1024,
		InitialTimeout:    500 * time.Millisecond,
		MaxTimeout:        5 * time.Second,
		BackoffMultiplier: 1.5,
		MinRuntime:        15 * time.Second,
		MaxRuntime:        90 * time.Second,
		RegisterPause:     500 * time.Millisecond,
		LogDir:            ".",
	}
}

func (c Config) ServerAddr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

// LogFile is the path of the append-only log kept by the peer with the given ID.
func (c Config) LogFile(id registry.PeerID) string {
	return filepath.Join(c.LogDir, fmt.Sprintf("client_%d_log.txt", id))
}

func (c Config) Validate() error {
	switch {
	case c.ServerPort < 1 || c.ServerPort > 65535:
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.ServerPort)
	case c.BufferSize < 1:
		return fmt.Errorf("%w: buffer size must be positive", ErrInvalidConfig)
	case c.InitialTimeout <= 0:
		return fmt.Errorf("%w: initial timeout must be positive", ErrInvalidConfig)
	case c.InitialTimeout > c.MaxTimeout:
		return fmt.Errorf("%w: initial timeout %s exceeds max timeout %s", ErrInvalidConfig, c.InitialTimeout, c.MaxTimeout)
	case c.BackoffMultiplier < 1:
		return fmt.Errorf("%w: backoff multiplier %g is below 1", ErrInvalidConfig, c.BackoffMultiplier)
	case c.MinRuntime <= 0 || c.MinRuntime > c.MaxRuntime:
		return fmt.Errorf("%w: runtime range [%s, %s] is invalid", ErrInvalidConfig, c.MinRuntime, c.MaxRuntime)
	case c.RegisterPause < 0:
		return fmt.Errorf("%w: register pause must not be negative", ErrInvalidConfig)
	}
	return nil
}
