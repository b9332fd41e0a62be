package logging

import (
	"log/slog"
	"net"
	"time"
)

// Error returns an empty attribute for a nil error so callers can log unconditionally.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Peer[T ~int64](id T) slog.Attr {
	return slog.Int64("peer_id", int64(id))
}

func Addr(addr net.Addr) slog.Attr {
	if addr == nil {
		return slog.Attr{}
	}
	return slog.String("addr", addr.String())
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
