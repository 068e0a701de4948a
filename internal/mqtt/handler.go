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

// Subscriber registers the interest in a topic filter.
type Subscriber interface {
	// Subscribe subscribes to the topic filter with the given QoS level.
	Subscribe(topic string, qos byte) error
}

// Handler receives the connection state transitions and the inbound
// messages. All methods are called from the Client background I/O goroutine,
// except the OnDisconnect call for a requested disconnection, which is called
// from the goroutine calling Client.Disconnect. The methods must not block.
type Handler interface {
	// OnConnect is called after each connection attempt. The Subscriber allows
	// the handler to subscribe once the connection is established.
	OnConnect(s Subscriber, code ReasonCode)

	// OnDisconnect is called when the connection is closed or lost.
	OnDisconnect(code ReasonCode)

	// OnMessage is called for each message received from the broker.
	OnMessage(topic string, payload []byte)
}
