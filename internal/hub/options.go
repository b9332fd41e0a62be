package hub

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/puizinam/go-udp-hub/internal/logging"
)

type options struct {
	log           *slog.Logger
	bufferSize    int
	readTimeout   time.Duration
	shutdownGrace time.Duration
	interval      func() time.Duration
	now           func() time.Time
}

// Option configures a Listener, a Broadcaster or a Server. Options that do not apply to the
// component being built are ignored.
type Option func(*options)

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithBufferSize(size int) Option {
	return func(o *options) { o.bufferSize = size }
}

// WithReadTimeout bounds each receive wait of the listener.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) { o.readTimeout = d }
}

func WithShutdownGrace(d time.Duration) Option {
	return func(o *options) { o.shutdownGrace = d }
}

// WithIntervals makes the broadcaster wait a uniformly random duration in [min, max] between broadcasts.
func WithIntervals(min, max time.Duration) Option {
	return func(o *options) { o.interval = randomInterval(min, max) }
}

// WithIntervalFunc replaces the random interval with fn.
func WithIntervalFunc(fn func() time.Duration) Option {
	return func(o *options) { o.interval = fn }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func configOptions(cfg Config) []Option {
	return []Option{
		WithBufferSize(cfg.BufferSize),
		WithReadTimeout(cfg.ReadTimeout),
		WithShutdownGrace(cfg.ShutdownGrace),
		WithIntervals(cfg.MinInterval, cfg.MaxInterval),
	}
}

func newOptions(opts []Option) options {
	defaults := DefaultConfig()
	o := options{
		log:           logging.Discard(),
		bufferSize:    defaults.BufferSize,
		readTimeout:   defaults.ReadTimeout,
		shutdownGrace: defaults.ShutdownGrace,
		interval:      randomInterval(defaults.MinInterval, defaults.MaxInterval),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func randomInterval(min, max time.Duration) func() time.Duration {
	if max < min {
		min, max = max, min
	}
	return func() time.Duration {
		return min + rand.N(max-min+1)
	}
}
