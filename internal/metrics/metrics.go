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

// Package metrics provides the prometheus collectors updated while the
// messages are received from the broker.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

const (
	namespace = "mqlogger"
	subsystem = "mqtt"
)

// Metrics holds the collectors of a single run.
//
// A nil *Metrics is valid and ignores all updates.
type Metrics struct {
	messages    prometheus.Counter
	bytes       prometheus.Counter
	connects    *prometheus.CounterVec
	disconnects *prometheus.CounterVec
	connected   prometheus.Gauge
}

// NewRegistry creates a registry with the Go runtime and the process
// collectors.
func NewRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// New creates the collectors and registers them into the registerer.
func New(r prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_received_total",
			Help:      "Total number of messages received from the broker",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "message_bytes_received_total",
			Help:      "Total number of payload bytes received from the broker",
		}),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connects_total",
			Help:      "Total number of connection results, by reason code",
		}, []string{"code"}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "disconnects_total",
			Help:      "Total number of disconnections, by reason code",
		}, []string{"code"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connected",
			Help:      "Indicates whether the client is connected with the broker",
		}),
	}

	var err error
	for _, c := range []prometheus.Collector{
		m.messages, m.bytes, m.connects, m.disconnects, m.connected,
	} {
		err = multierr.Append(err, r.Register(c))
	}
	if err != nil {
		return nil, err
	}

	return m, nil
}

// MessageReceived records a message with the given payload size.
func (m *Metrics) MessageReceived(size int) {
	if m == nil {
		return
	}
	m.messages.Inc()
	m.bytes.Add(float64(size))
}

// Connected records the result of a connection attempt.
func (m *Metrics) Connected(code byte) {
	if m == nil {
		return
	}
	m.connects.WithLabelValues(strconv.Itoa(int(code))).Inc()
	if code == 0 {
		m.connected.Set(1)
	}
}

// Disconnected records a disconnection.
func (m *Metrics) Disconnected(code byte) {
	if m == nil {
		return
	}
	m.disconnects.WithLabelValues(strconv.Itoa(int(code))).Inc()
	m.connected.Set(0)
}
