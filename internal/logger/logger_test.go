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

package logger_test

import (
	"bytes"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLog(t *testing.T) {
	out := bytes.NewBufferString("")
	log := logger.New(out, nil)
	msg := gofakeit.Phrase()

	log.Info().Msg(msg)
	assert.Contains(t, out.String(), "INFO")
	assert.Contains(t, out.String(), msg)
}

func TestLoggerWithField(t *testing.T) {
	out := bytes.NewBufferString("")
	log := logger.New(out, &logger.Options{NoColors: true})
	key := gofakeit.Word()
	val := gofakeit.Phrase()

	log.Info().Str(key, val).Msg("")
	assert.Contains(t, out.String(), key+"=")
	assert.Contains(t, out.String(), val)
}

func TestLoggerSeverity(t *testing.T) {
	out := bytes.NewBufferString("")
	log := logger.New(out, &logger.Options{Severity: logger.SeverityWarning})

	log.Info().Msg(gofakeit.Phrase())
	assert.Empty(t, out.String())

	log.Warn().Msg("warning")
	assert.Contains(t, out.String(), "warning")
}

func TestLoggerCriticalDoesNotExit(t *testing.T) {
	out := bytes.NewBufferString("")
	log := logger.New(out, &logger.Options{NoColors: true})

	log.WithLevel(logger.SeverityCritical.Level()).Msg("critical")
	assert.Contains(t, out.String(), "| CRITICAL |")
}

func TestLoggerErrorOutput(t *testing.T) {
	out := bytes.NewBufferString("")
	errOut := bytes.NewBufferString("")
	log := logger.New(out, &logger.Options{ErrOut: errOut, NoColors: true})

	log.Info().Msg("info")
	log.Error().Msg("error")

	assert.Contains(t, out.String(), "info")
	assert.NotContains(t, out.String(), "error")
	assert.Contains(t, errOut.String(), "error")
	assert.NotContains(t, errOut.String(), "info")
}

func TestLoggerNoColors(t *testing.T) {
	out := bytes.NewBufferString("")
	log := logger.New(out, &logger.Options{NoColors: true})

	log.Info().Msg(gofakeit.Phrase())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestParseSeverity(t *testing.T) {
	testCases := []struct {
		name     string
		severity logger.Severity
		level    zerolog.Level
	}{
		{"trace", logger.SeverityTrace, zerolog.TraceLevel},
		{"DEBUG", logger.SeverityDebug, zerolog.DebugLevel},
		{"info", logger.SeverityInfo, zerolog.InfoLevel},
		{"warn", logger.SeverityWarning, zerolog.WarnLevel},
		{"WARNING", logger.SeverityWarning, zerolog.WarnLevel},
		{"error", logger.SeverityError, zerolog.ErrorLevel},
		{"critical", logger.SeverityCritical, zerolog.FatalLevel},
		{"FATAL", logger.SeverityCritical, zerolog.FatalLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := logger.ParseSeverity(tc.name)
			require.Nil(t, err)
			assert.Equal(t, tc.severity, s)
			assert.Equal(t, tc.level, s.Level())
		})
	}
}

func TestParseSeverityInvalid(t *testing.T) {
	_, err := logger.ParseSeverity("invalid")
	assert.ErrorIs(t, err, logger.ErrInvalidSeverity)
	assert.Equal(t, "invalid log level", err.Error())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "warning", logger.SeverityWarning.String())
	assert.Equal(t, "critical", logger.SeverityCritical.String())
	assert.Equal(t, "invalid", logger.Severity(42).String())
}

func TestSeverityOrder(t *testing.T) {
	assert.Less(t, int(logger.SeverityTrace), int(logger.SeverityDebug))
	assert.Less(t, int(logger.SeverityDebug), int(logger.SeverityInfo))
	assert.Less(t, int(logger.SeverityInfo), int(logger.SeverityWarning))
	assert.Less(t, int(logger.SeverityWarning), int(logger.SeverityError))
	assert.Less(t, int(logger.SeverityError), int(logger.SeverityCritical))
}
