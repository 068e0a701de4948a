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

import "fmt"

// ReasonCode is the result code reported in the connection state callbacks.
// The value 0 indicates success; any other value indicates a failure.
type ReasonCode byte

const (
	// ReasonSuccess indicates that the operation completed with success.
	ReasonSuccess ReasonCode = 0x00

	// ReasonUnacceptableProtocolVersion indicates that the broker does not
	// support the protocol version requested by the client.
	ReasonUnacceptableProtocolVersion ReasonCode = 0x01

	// ReasonIdentifierRejected indicates that the client identifier is not
	// allowed by the broker.
	ReasonIdentifierRejected ReasonCode = 0x02

	// ReasonServerUnavailable indicates that the MQTT service is unavailable.
	ReasonServerUnavailable ReasonCode = 0x03

	// ReasonBadUsernameOrPassword indicates that the credentials are
	// malformed or rejected.
	ReasonBadUsernameOrPassword ReasonCode = 0x04

	// ReasonNotAuthorized indicates that the client is not authorized to
	// connect.
	ReasonNotAuthorized ReasonCode = 0x05

	// ReasonNetworkError indicates that the network connection could not be
	// established or it was lost.
	ReasonNetworkError ReasonCode = 0xFE

	// ReasonProtocolViolation indicates that the broker sent an invalid
	// packet.
	ReasonProtocolViolation ReasonCode = 0xFF
)

var reasonCodeDescription = map[ReasonCode]string{
	ReasonSuccess:                     "success",
	ReasonUnacceptableProtocolVersion: "unacceptable protocol version",
	ReasonIdentifierRejected:          "identifier rejected",
	ReasonServerUnavailable:           "server unavailable",
	ReasonBadUsernameOrPassword:       "bad username or password",
	ReasonNotAuthorized:               "not authorized",
	ReasonNetworkError:                "network error",
	ReasonProtocolViolation:           "protocol violation",
}

// String returns the description of the reason code.
func (c ReasonCode) String() string {
	desc, ok := reasonCodeDescription[c]
	if !ok {
		return fmt.Sprintf("unknown (%d)", byte(c))
	}
	return desc
}

// Success returns true if the reason code indicates success.
func (c ReasonCode) Success() bool {
	return c == ReasonSuccess
}
