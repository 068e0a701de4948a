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

// Package mqtttest provides an embedded MQTT broker for tests.
package mqtttest

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/stretchr/testify/require"
)

// Credentials are the username and password accepted by the Broker.
type Credentials struct {
	Username string
	Password string
}

// Broker is an embedded MQTT broker listening on a local TCP port.
type Broker struct {
	// Host is the address where the Broker is listening.
	Host string

	// Port is the TCP port where the Broker is listening.
	Port int

	server *mochi.Server
	hook   *hook
}

// NewBroker starts a new Broker which is closed when the test finishes. If
// credentials are provided, only clients with matching credentials are
// accepted.
func NewBroker(t testing.TB, creds *Credentials) *Broker {
	t.Helper()

	port := FreePort(t)
	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	srv := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	h := &hook{creds: creds, subscribed: make(map[string]int)}
	require.Nil(t, srv.AddHook(h, nil))

	// The listener is bound when added, so the clients can connect as soon
	// as the Serve returns.
	tcp := listeners.NewTCP(listeners.Config{ID: "tcp", Address: address})
	require.Nil(t, srv.AddListener(tcp))

	require.Nil(t, srv.Serve())
	t.Cleanup(func() { _ = srv.Close() })

	return &Broker{Host: "127.0.0.1", Port: port, server: srv, hook: h}
}

// Publish publishes a message from the Broker to all subscribers.
func (b *Broker) Publish(topic string, payload []byte, qos byte) error {
	return b.server.Publish(topic, payload, false, qos)
}

// Connections returns the number of CONNECT packets received by the Broker,
// including the refused ones.
func (b *Broker) Connections() int64 {
	return b.hook.connections.Load()
}

// Subscriptions returns the number of SUBSCRIBE packets received for the
// topic filter.
func (b *Broker) Subscriptions(filter string) int {
	b.hook.mu.Lock()
	defer b.hook.mu.Unlock()
	return b.hook.subscribed[filter]
}

// DisconnectClients closes the connection of all clients, except the inline
// client, without closing the Broker.
func (b *Broker) DisconnectClients() {
	for _, cl := range b.server.Clients.GetAll() {
		if cl.Net.Inline {
			continue
		}
		cl.Stop(packets.ErrServerShuttingDown)
	}
}

// FreePort returns a local TCP port with no listener.
func FreePort(t testing.TB) int {
	t.Helper()

	lsn, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer func() { _ = lsn.Close() }()

	return lsn.Addr().(*net.TCPAddr).Port
}

type hook struct {
	mochi.HookBase
	creds       *Credentials
	connections atomic.Int64
	mu          sync.Mutex
	subscribed  map[string]int
}

func (h *hook) ID() string {
	return "mqtttest"
}

func (h *hook) Provides(b byte) bool {
	return bytes.Contains([]byte{
		mochi.OnConnect,
		mochi.OnConnectAuthenticate,
		mochi.OnACLCheck,
		mochi.OnSubscribe,
	}, []byte{b})
}

func (h *hook) OnConnect(_ *mochi.Client, _ packets.Packet) error {
	h.connections.Add(1)
	return nil
}

func (h *hook) OnConnectAuthenticate(_ *mochi.Client, pk packets.Packet) bool {
	if h.creds == nil {
		return true
	}

	return string(pk.Connect.Username) == h.creds.Username &&
		string(pk.Connect.Password) == h.creds.Password
}

func (h *hook) OnACLCheck(_ *mochi.Client, _ string, _ bool) bool {
	return true
}

func (h *hook) OnSubscribe(_ *mochi.Client, pk packets.Packet) packets.Packet {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, f := range pk.Filters {
		h.subscribed[f.Filter]++
	}
	return pk
}
