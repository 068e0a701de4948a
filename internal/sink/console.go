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

package sink

import (
	"io"

	"github.com/gsalomao/mqlogger/internal/logger"
)

// ConsoleOptions are options for the Console sink.
type ConsoleOptions struct {
	// Threshold is the minimum severity written by the sink.
	Threshold logger.Severity

	// NoColors disables the ANSI colors.
	NoColors bool
}

// Console is the sink which writes into the standard output, for records
// below warning severity, and into the standard error, otherwise.
type Console struct {
	log       logger.Logger
	threshold logger.Severity
}

// NewConsole creates a Console sink writing into out and errOut.
func NewConsole(out, errOut io.Writer, opts ConsoleOptions) *Console {
	log := logger.New(out, &logger.Options{
		Severity: opts.Threshold,
		ErrOut:   errOut,
		NoColors: opts.NoColors,
	})

	return &Console{log: log, threshold: opts.Threshold}
}

// Write writes a line with the topic and the message. Records without topic
// are written as diagnostics, with the message only.
func (c *Console) Write(severity logger.Severity, topic, msg string) {
	if severity < c.threshold {
		return
	}

	if topic != "" {
		msg = "Topic: " + topic + " - Message: " + msg
	}
	c.log.WithLevel(severity.Level()).Msg(msg)
}

// Logger returns the logger used by the Console sink. It generates the logs
// with the same threshold as the sink.
func (c *Console) Logger() *logger.Logger {
	return &c.log
}

// Threshold returns the minimum severity written by the sink.
func (c *Console) Threshold() logger.Severity {
	return c.threshold
}
