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
	"sync"

	"github.com/gsalomao/mqlogger/internal/logger"
)

// SinkRecord is a record written into the SinkStub.
type SinkRecord struct {
	Severity logger.Severity
	Topic    string
	Message  string
}

// SinkStub is responsible to simulate a sink, keeping all written records
// in memory.
type SinkStub struct {
	mu      sync.Mutex
	records []SinkRecord
	order   *[]string
	name    string
}

// NewSinkStub creates a SinkStub. When order is provided, the sink appends
// its name into it on each write.
func NewSinkStub(name string, order *[]string) *SinkStub {
	return &SinkStub{name: name, order: order}
}

// Write records the message.
func (s *SinkStub) Write(severity logger.Severity, topic, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SinkRecord{Severity: severity, Topic: topic, Message: msg})
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
}

// Records returns all written records.
func (s *SinkStub) Records() []SinkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SinkRecord(nil), s.records...)
}
