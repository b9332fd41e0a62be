package hub

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds the hub's settings. It is read once at startup and never changes afterwards.
type Config struct {
	Host          string        `env:"HUB_HOST" envDefault:"0.0.0.0"`
	Port          int           `env:"HUB_PORT" envDefault:"9999"`
	BufferSize    int           `env:"HUB_BUFFER_SIZE" envDefault:"1024"`
	MinInterval   time.Duration `env:"HUB_MIN_INTERVAL" envDefault:"5s"`
	MaxInterval   time.Duration `env:"HUB_MAX_INTERVAL" envDefault:"30s"`
	ReadTimeout   time.Duration `env:"HUB_READ_TIMEOUT" envDefault:"1s"`
	ShutdownGrace time.Duration `env:"HUB_SHUTDOWN_GRACE" envDefault:"5s"`
	LogFile       string        `env:"HUB_LOG_FILE" envDefault:"server_log.txt"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Host:          "0.0.0.0",
		Port:          9999,
		BufferSize:    1024,
		MinInterval:   5 * time.Second,
		MaxInterval:   30 * time.Second,
		ReadTimeout:   time.Second,
		ShutdownGrace: 5 * time.Second,
		LogFile:       "server_log.txt",
	}
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.BufferSize < 1:
		return fmt.Errorf("%w: buffer size must be positive", ErrInvalidConfig)
	case c.MinInterval <= 0 || c.MaxInterval <= 0:
		return fmt.Errorf("%w: broadcast intervals must be positive", ErrInvalidConfig)
	case c.MinInterval > c.MaxInterval:
		return fmt.Errorf("%w: min interval %s exceeds max interval %s", ErrInvalidConfig, c.MinInterval, c.MaxInterval)
	case c.ReadTimeout <= 0:
		return fmt.Errorf("%w: read timeout must be positive", ErrInvalidConfig)
	case c.ShutdownGrace <= 0:
		return fmt.Errorf("%w: shutdown grace must be positive", ErrInvalidConfig)
	}
	return nil
}
