package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

var ErrInvalidConfig = errors.New("invalid echo configuration")

// DefaultMessage is the payload sent on every benchmark trial.
var DefaultMessage = []byte("PING!!!")

type BenchResult struct {
	Trials []time.Duration
}

func (r BenchResult) Average() time.Duration {
	if len(r.Trials) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range r.Trials {
		total += d
	}
	return total / time.Duration(len(r.Trials))
}

// Milliseconds converts d to fractional milliseconds for reporting.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// This function sends message over conn trials times, waiting for the full echo each time, and
// records every round trip. onTrial (optional) is called after each trial with its 1-based number.
// Cancelling ctx closes conn and aborts the run; the trials completed so far are returned with the error.
func Bench(ctx context.Context, conn net.Conn, trials int, message []byte, onTrial func(int, time.Duration)) (BenchResult, error) {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	result := BenchResult{Trials: make([]time.Duration, 0, trials)}
	response := make([]byte, len(message))
	for i := range trials {
		start := time.Now()
		if _, err := conn.Write(message); err != nil {
			return result, benchError(ctx, i+1, err)
		}
		if _, err := io.ReadFull(conn, response); err != nil {
			return result, benchError(ctx, i+1, err)
		}
		elapsed := time.Since(start)
		result.Trials = append(result.Trials, elapsed)
		if onTrial != nil {
			onTrial(i+1, elapsed)
		}
	}
	return result, nil
}

func benchError(ctx context.Context, trial int, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("trial %d: %w", trial, err)
}
