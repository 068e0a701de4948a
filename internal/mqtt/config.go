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

package mqtt

import "time"

const (
	defaultConnectTimeout       = 10 * time.Second
	defaultConnectRetryInterval = time.Second
	defaultMaxReconnectInterval = 10 * time.Minute
	defaultKeepAlive            = 60 * time.Second
	defaultSubscribeTimeout     = 10 * time.Second

	// The amount of time, in milliseconds, to wait for pending work when
	// disconnecting.
	defaultDisconnectQuiesce = 250

	eventsBufferSize = 256
	maxQoS           = 2
)

// Config holds the Client configuration.
type Config struct {
	// Broker host name or IP address.
	Host string

	// Broker TCP port.
	Port int

	// Maximum idle interval after which the client pings the broker.
	KeepAlive time.Duration

	// Client identifier. If it's empty, an identifier is generated.
	ClientID string

	// Indicate whether failed connection attempts are retried. When it's
	// false, Connect waits for the first attempt and returns its error.
	ConnectRetry bool

	// The interval between the first failed connection attempt and the next
	// one. The interval doubles after each failure.
	ConnectRetryInterval time.Duration

	// The maximum interval between connection attempts.
	MaxReconnectInterval time.Duration

	// The maximum amount of time to wait for the CONNACK packet.
	ConnectTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.KeepAlive <= 0 {
		c.KeepAlive = defaultKeepAlive
	}
	if c.ConnectRetryInterval <= 0 {
		c.ConnectRetryInterval = defaultConnectRetryInterval
	}
	if c.MaxReconnectInterval <= 0 {
		c.MaxReconnectInterval = defaultMaxReconnectInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	return c
}
