package salesync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// Prober checks backend reachability. *backend.Client satisfies it.
type Prober interface {
	Probe(ctx context.Context) error
}

// ConnectivityMonitor polls the backend and calls onRestore each time it comes
// back after being unreachable.
type ConnectivityMonitor struct {
	prober    Prober
	interval  time.Duration
	onRestore func()
	logg      *logger.Logger

	online atomic.Bool
	known  atomic.Bool
}

const defaultProbeInterval = 15 * time.Second

func NewConnectivityMonitor(prober Prober, interval time.Duration, onRestore func(), logg *logger.Logger) *ConnectivityMonitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if onRestore == nil {
		onRestore = func() {}
	}
	return &ConnectivityMonitor{prober: prober, interval: interval, onRestore: onRestore, logg: logg}
}

// Online reports the last observed state. It is false until the first probe.
func (m *ConnectivityMonitor) Online() bool {
	return m.online.Load()
}

// Check probes once and fires onRestore on an offline to online transition.
// The first probe only establishes the state.
func (m *ConnectivityMonitor) Check(ctx context.Context) bool {
	up := m.prober.Probe(ctx) == nil
	was := m.online.Swap(up)
	first := !m.known.Swap(true)

	if first || was == up {
		return up
	}
	if up {
		m.logg.Info(ctx, "backend reachable again")
		m.onRestore()
	} else {
		m.logg.Warn(ctx, "backend unreachable; sales will queue locally")
	}
	return up
}

func (m *ConnectivityMonitor) Run(ctx context.Context) error {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
