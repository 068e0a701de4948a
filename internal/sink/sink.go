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

// Package sink implements the output channels where the received messages
// are rendered.
package sink

import "github.com/gsalomao/mqlogger/internal/logger"

// Sink is an append-only output channel with a minimum severity.
type Sink interface {
	// Write appends a record with the topic and the message when the severity
	// is equal to or above the sink threshold. Otherwise, it does nothing.
	Write(severity logger.Severity, topic, msg string)
}
