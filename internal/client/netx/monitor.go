// Package netx reports network reachability. The sync engine consults it
// before any network I/O; offline simply means "skip this cycle".
package netx

import (
	"context"
	"time"

	"github.com/dmarques/obrafield/internal/logging"
)

// Pinger is anything that can probe the server cheaply. The API client's
// Ping satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor answers "are we online right now". The answer is ground truth at
// call time only; a request racing a dropped link just fails like any other
// push/pull failure and is retried next cycle.
type Monitor struct {
	pinger  Pinger
	timeout time.Duration
	log     logging.Logger
}

func NewMonitor(p Pinger, timeout time.Duration, log logging.Logger) *Monitor {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Monitor{pinger: p, timeout: timeout, log: log}
}

// Online probes the server with a short deadline.
func (m *Monitor) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.pinger.Ping(ctx); err != nil {
		if m.log != nil {
			m.log.Debug(ctx, "connectivity probe failed", "error", err)
		}
		return false
	}
	return true
}
