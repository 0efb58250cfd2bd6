// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"time"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
)

// ConnectivityMonitor probes the remote on a ticker and tells the listener
// when it becomes reachable after a failed probe.
type ConnectivityMonitor struct {
	remote   Pinger
	listener NetworkListener
	interval time.Duration

	online bool
}

func NewConnectivityMonitor(remote Pinger, listener NetworkListener, interval time.Duration) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		remote:   remote,
		listener: listener,
		interval: interval,
		online:   true,
	}
}

// Run probes until ctx is done. A non-positive interval disables the
// monitor.
func (m *ConnectivityMonitor) Run(ctx context.Context) error {
	if m.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.probe(ctx)
		}
	}
}

func (m *ConnectivityMonitor) probe(ctx context.Context) {
	log := logger.FromContext(ctx)

	err := m.remote.Ping(ctx)
	if err != nil {
		if m.online && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("func", "ConnectivityMonitor.probe").Msg("remote unreachable")
		}
		m.online = false
		return
	}
	if m.online {
		return
	}

	m.online = true
	log.Info().Str("func", "ConnectivityMonitor.probe").Msg("remote reachable again")
	if err := m.listener.OnNetworkRestored(ctx); err != nil {
		log.Err(err).Str("func", "ConnectivityMonitor.probe").Msg("retry after reconnect failed")
	}
}
