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
	"bytes"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/stretchr/testify/assert"
)

var severities = []logger.Severity{
	logger.SeverityTrace,
	logger.SeverityDebug,
	logger.SeverityInfo,
	logger.SeverityWarning,
	logger.SeverityError,
	logger.SeverityCritical,
}

func lines(s string) int {
	return strings.Count(s, "\n")
}

func TestConsoleWriteThreshold(t *testing.T) {
	for _, threshold := range severities {
		for _, severity := range severities {
			t.Run(threshold.String()+"-"+severity.String(), func(t *testing.T) {
				out := bytes.NewBufferString("")
				c := NewConsole(out, out, ConsoleOptions{Threshold: threshold, NoColors: true})

				c.Write(severity, gofakeit.Word(), gofakeit.Phrase())
				if severity < threshold {
					assert.Empty(t, out.String())
				} else {
					assert.Equal(t, 1, lines(out.String()))
				}
			})
		}
	}
}

func TestConsoleWriteMessage(t *testing.T) {
	out := bytes.NewBufferString("")
	c := NewConsole(out, out, ConsoleOptions{Threshold: logger.SeverityInfo, NoColors: true})

	c.Write(logger.SeverityInfo, "sensors/temp", "21.5")
	assert.Contains(t, out.String(), "Topic: sensors/temp - Message: 21.5")
	assert.Contains(t, out.String(), "| INFO")
}

func TestConsoleWriteDiagnostic(t *testing.T) {
	out := bytes.NewBufferString("")
	c := NewConsole(out, out, ConsoleOptions{Threshold: logger.SeverityInfo, NoColors: true})
	msg := gofakeit.Phrase()

	c.Write(logger.SeverityInfo, "", msg)
	assert.Contains(t, out.String(), msg)
	assert.NotContains(t, out.String(), "Topic:")
}

func TestConsoleWriteOutputBySeverity(t *testing.T) {
	out := bytes.NewBufferString("")
	errOut := bytes.NewBufferString("")
	c := NewConsole(out, errOut, ConsoleOptions{Threshold: logger.SeverityTrace, NoColors: true})

	c.Write(logger.SeverityInfo, "", "info message")
	c.Write(logger.SeverityWarning, "", "warning message")
	c.Write(logger.SeverityCritical, "", "critical message")

	assert.Contains(t, out.String(), "info message")
	assert.NotContains(t, out.String(), "warning message")
	assert.Contains(t, errOut.String(), "warning message")
	assert.Contains(t, errOut.String(), "critical message")
}

func TestConsoleLoggerThreshold(t *testing.T) {
	out := bytes.NewBufferString("")
	c := NewConsole(out, out, ConsoleOptions{Threshold: logger.SeverityWarning, NoColors: true})

	c.Logger().Info().Msg("info")
	assert.Empty(t, out.String())

	c.Logger().Error().Msg("error")
	assert.Contains(t, out.String(), "error")
	assert.Equal(t, logger.SeverityWarning, c.Threshold())
}
