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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// ClientMock is responsible to mock the broker client driven by the
// dispatch loop.
type ClientMock struct {
	mock.Mock
}

// Connect starts the connection with the broker.
func (c *ClientMock) Connect(ctx context.Context) error {
	args := c.Called(ctx)
	return args.Error(0)
}

// StartBackgroundIO starts the background I/O.
func (c *ClientMock) StartBackgroundIO() {
	c.Called()
}

// StopBackgroundIO stops the background I/O.
func (c *ClientMock) StopBackgroundIO() {
	c.Called()
}

// Disconnect disconnects from the broker.
func (c *ClientMock) Disconnect() {
	c.Called()
}

// SubscriberMock is responsible to mock the subscriber passed to the
// connection handlers.
type SubscriberMock struct {
	mock.Mock
}

// Subscribe subscribes to the topic filter.
func (s *SubscriberMock) Subscribe(topic string, qos byte) error {
	args := s.Called(topic, qos)
	return args.Error(0)
}
