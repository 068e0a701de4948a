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

// Package router delivers the connection events and the messages received
// from the broker into the sinks.
package router

import (
	"fmt"
	"strings"

	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/gsalomao/mqlogger/internal/metrics"
	"github.com/gsalomao/mqlogger/internal/mqtt"
	"github.com/gsalomao/mqlogger/internal/sink"
)

// SubscriptionQoS is the QoS level used to subscribe to the topic filter.
const SubscriptionQoS byte = 1

// Config holds the Router configuration.
type Config struct {
	// Topic filter subscribed on each connection.
	Topic string

	// Console sink. It's required.
	Console sink.Sink

	// File sink. It's optional.
	File sink.Sink

	// Metrics updated on each event. It's optional.
	Metrics *metrics.Metrics
}

// Router implements the mqtt.Handler delivering the messages into the sinks.
type Router struct {
	topic   string
	console sink.Sink
	file    sink.Sink
	metrics *metrics.Metrics
}

// New creates a new Router.
func New(c Config) *Router {
	return &Router{
		topic:   c.Topic,
		console: c.Console,
		file:    c.File,
		metrics: c.Metrics,
	}
}

// OnConnect subscribes to the topic filter when the broker accepted the
// connection. Otherwise, it reports the refused connection.
func (r *Router) OnConnect(s mqtt.Subscriber, code mqtt.ReasonCode) {
	r.metrics.Connected(byte(code))

	if !code.Success() {
		r.console.Write(logger.SeverityError, "",
			fmt.Sprintf("Connection failed with result code %d (%s)", byte(code), code))
		return
	}

	r.console.Write(logger.SeverityInfo, "", "Connected to broker")
	if err := s.Subscribe(r.topic, SubscriptionQoS); err != nil {
		r.console.Write(logger.SeverityError, "",
			fmt.Sprintf("Failed to subscribe to %s: %v", r.topic, err))
		return
	}

	r.console.Write(logger.SeverityDebug, "", "Subscribed to "+r.topic)
}

// OnDisconnect reports the disconnection from the broker.
func (r *Router) OnDisconnect(code mqtt.ReasonCode) {
	r.metrics.Disconnected(byte(code))

	if code.Success() {
		r.console.Write(logger.SeverityInfo, "", "Disconnected from broker")
		return
	}

	r.console.Write(logger.SeverityError, "",
		fmt.Sprintf("Unexpected disconnection with result code %d (%s)", byte(code), code))
}

// OnMessage writes the message into the file sink, when configured, and then
// into the console sink. Invalid UTF-8 sequences in the payload are replaced
// by the replacement character.
func (r *Router) OnMessage(topic string, payload []byte) {
	r.metrics.MessageReceived(len(payload))

	msg := strings.ToValidUTF8(string(payload), "�")
	if r.file != nil {
		r.file.Write(logger.SeverityInfo, topic, msg)
	}
	r.console.Write(logger.SeverityInfo, topic, msg)
}
