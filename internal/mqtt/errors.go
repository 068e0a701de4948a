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

import "errors"

var (
	// ErrMissingPassword indicates that a username was provided without
	// password.
	ErrMissingPassword = errors.New("mqtt: username provided without password")

	// ErrMissingUsername indicates that a password was provided without
	// username.
	ErrMissingUsername = errors.New("mqtt: password provided without username")

	// ErrConnectionFailed indicates that the connection with the broker could
	// not be established.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrAlreadyConnected indicates that Connect was called more than once.
	ErrAlreadyConnected = errors.New("mqtt: client already connected")

	// ErrNotConnected indicates an operation on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrInvalidTopic indicates an empty topic filter.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrInvalidQoS indicates a QoS level other than 0, 1, or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
)
