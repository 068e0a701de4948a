// Copyright 2022 The MQLogger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dispatch drives the broker client from the startup until the
// shutdown is requested.
package dispatch

import (
	"context"
	"time"

	"github.com/gsalomao/mqlogger/internal/logger"
)

// DefaultPollInterval is the default interval between two checks of the
// shutdown request.
const DefaultPollInterval = 100 * time.Millisecond

// Client is the broker client driven by the Loop.
type Client interface {
	// Connect starts the connection with the broker.
	Connect(ctx context.Context) error

	// StartBackgroundIO starts the delivery of the broker events.
	StartBackgroundIO()

	// StopBackgroundIO stops the delivery of the broker events.
	StopBackgroundIO()

	// Disconnect closes the session with the broker.
	Disconnect()
}

// ShutdownMonitor indicates whether the shutdown was requested.
type ShutdownMonitor interface {
	Requested() bool
}

// Loop connects the client with the broker and keeps it running until the
// shutdown is requested.
type Loop struct {
	client   Client
	monitor  ShutdownMonitor
	interval time.Duration
	log      *logger.Logger
}

// NewLoop creates a new Loop. If the interval is not positive, the
// DefaultPollInterval is used.
func NewLoop(c Client, m ShutdownMonitor, interval time.Duration, log *logger.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Loop{client: c, monitor: m, interval: interval, log: log}
}

// Run connects the client and starts its background I/O. It blocks until the
// shutdown is requested, or the context is cancelled, and then it stops the
// background I/O and disconnects the client.
//
// It returns an error only if the client failed to connect, and in this case
// the background I/O is never started.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.client.Connect(ctx); err != nil {
		return err
	}

	l.client.StartBackgroundIO()
	l.log.Debug().Dur("PollInterval", l.interval).Msg("Dispatch loop running")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for !l.monitor.Requested() {
		select {
		case <-ctx.Done():
			l.log.Debug().Msg("Dispatch loop cancelled")
			l.shutdown()
			return nil
		case <-ticker.C:
		}
	}

	l.log.Debug().Msg("Shutdown requested")
	l.shutdown()
	return nil
}

func (l *Loop) shutdown() {
	l.client.StopBackgroundIO()
	l.client.Disconnect()
	l.log.Debug().Msg("Dispatch loop stopped")
}
