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

// Package shutdown observes the process termination requests.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Monitor exposes whether a process termination has been requested. Once
// the shutdown is requested, it stays requested for the lifetime of the
// Monitor.
type Monitor struct {
	requested atomic.Bool
	signals   chan os.Signal
	done      chan struct{}
	once      sync.Once
	started   atomic.Bool
}

// NewMonitor creates a new Monitor. It does not watch any signal until the
// Start function is called.
func NewMonitor() *Monitor {
	return &Monitor{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Start starts watching the SIGINT and SIGTERM signals. Each received signal
// only sets the shutdown flag.
func (m *Monitor) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}

	signal.Notify(m.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			select {
			case <-m.signals:
				m.requested.Store(true)
			case <-m.done:
				return
			}
		}
	}()
}

// Stop stops watching the signals. The shutdown flag keeps its value.
func (m *Monitor) Stop() {
	m.once.Do(func() {
		signal.Stop(m.signals)
		close(m.done)
	})
}

// Request requests the shutdown, as a termination signal would do.
func (m *Monitor) Request() {
	m.requested.Store(true)
}

// Requested returns true if the shutdown has been requested.
func (m *Monitor) Requested() bool {
	return m.requested.Load()
}
