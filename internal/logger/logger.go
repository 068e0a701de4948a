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

package logger

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a logging object responsible to generate outputs to
// an io.Writer.
type Logger = zerolog.Logger

// Severity represents the importance of a log record. The severities are
// ordered from the least important to the most important one.
type Severity int8

const (
	// SeverityTrace is the least important severity.
	SeverityTrace Severity = iota

	// SeverityDebug is used for debugging information.
	SeverityDebug

	// SeverityInfo is used for informational records, such as messages
	// received from the broker.
	SeverityInfo

	// SeverityWarning is used for unexpected, but recoverable, situations.
	SeverityWarning

	// SeverityError is used for failures.
	SeverityError

	// SeverityCritical is the most important severity.
	SeverityCritical
)

// ErrInvalidSeverity indicates that a severity name is not known.
var ErrInvalidSeverity = errors.New("invalid log level")

var severityName = map[Severity]string{
	SeverityTrace:    "trace",
	SeverityDebug:    "debug",
	SeverityInfo:     "info",
	SeverityWarning:  "warning",
	SeverityError:    "error",
	SeverityCritical: "critical",
}

var severityCode = map[string]Severity{
	"trace":    SeverityTrace,
	"TRACE":    SeverityTrace,
	"debug":    SeverityDebug,
	"DEBUG":    SeverityDebug,
	"info":     SeverityInfo,
	"INFO":     SeverityInfo,
	"warn":     SeverityWarning,
	"WARN":     SeverityWarning,
	"warning":  SeverityWarning,
	"WARNING":  SeverityWarning,
	"error":    SeverityError,
	"ERROR":    SeverityError,
	"critical": SeverityCritical,
	"CRITICAL": SeverityCritical,
	"fatal":    SeverityCritical,
	"FATAL":    SeverityCritical,
}

// ParseSeverity converts a severity name into a Severity.
func ParseSeverity(str string) (Severity, error) {
	s, ok := severityCode[str]
	if !ok {
		return SeverityInfo, ErrInvalidSeverity
	}
	return s, nil
}

// String returns the severity name.
func (s Severity) String() string {
	name, ok := severityName[s]
	if !ok {
		return "invalid"
	}
	return name
}

// Level returns the zerolog level which represents the severity. The
// critical severity is mapped to the zerolog fatal level, which must only
// be written with Logger.WithLevel as the Fatal method exits the process.
func (s Severity) Level() zerolog.Level {
	switch s {
	case SeverityTrace:
		return zerolog.TraceLevel
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityInfo:
		return zerolog.InfoLevel
	case SeverityWarning:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	case SeverityCritical:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}

// Options are options for the Logger.
type Options struct {
	// Severity defines the minimal severity of the generated logs.
	Severity Severity

	// ErrOut receives the logs with warning severity or above. If it's not
	// provided, all logs are written into the main output.
	ErrOut io.Writer

	// NoColors disables the ANSI colors.
	NoColors bool
}

const (
	reset  = "\x1b[0m"
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	blue   = "\x1b[34m"
	cyan   = "\x1b[36m"
	white  = "\x1b[37m"
	bgRed  = "\x1b[41m"
	gray   = "\x1b[90m"
)

var levelColor = map[string]string{
	"TRACE":    gray,
	"DEBUG":    blue,
	"INFO":     green,
	"WARN":     yellow,
	"ERROR":    red,
	"CRITICAL": bgRed,
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
}

// New creates a new logger which writes the log records into out.
//
// The Options parameter allows to set optional settings. If it's not
// provided, the logger is created with the info severity and colors.
func New(out io.Writer, opts *Options) Logger {
	o := Options{Severity: SeverityInfo}
	if opts != nil {
		o = *opts
	}

	errOut := out
	if o.ErrOut != nil {
		errOut = o.ErrOut
	}

	w := &levelWriter{
		out:    newConsoleWriter(out, o.NoColors),
		errOut: newConsoleWriter(errOut, o.NoColors),
	}

	return zerolog.New(w).
		Level(o.Severity.Level()).
		With().
		Timestamp().
		Logger()
}

func newConsoleWriter(out io.Writer, noColors bool) zerolog.ConsoleWriter {
	c := colorizer(!noColors)

	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColors,
		TimeFormat: time.RFC3339Nano,
	}

	output.FormatTimestamp = func(i interface{}) string {
		v, err := strconv.ParseInt(fmt.Sprintf("%v", i), 10, 64)
		if err != nil {
			return ""
		}

		t := time.UnixMicro(v)
		return c.colorize(white, t.Format("2006-01-02 15:04:05.000000 -0700"))
	}
	output.FormatLevel = func(i interface{}) string {
		level := strings.ToUpper(fmt.Sprintf("%s", i))
		if level == "FATAL" {
			level = "CRITICAL"
		}

		if noColors {
			return fmt.Sprintf("| %-8s |", level)
		}
		return fmt.Sprintf("| %-17s |", c.colorize(levelColor[level], level))
	}
	output.FormatMessage = func(i interface{}) string {
		return c.colorize(cyan, fmt.Sprintf("%s", i))
	}
	output.FormatFieldName = func(i interface{}) string {
		return c.colorize(gray, fmt.Sprintf("%s=", i))
	}
	output.FormatFieldValue = func(i interface{}) string {
		return c.colorize(gray, fmt.Sprintf("%s", i))
	}
	output.FormatErrFieldName = output.FormatFieldName
	output.FormatErrFieldValue = output.FormatFieldValue

	return output
}

type colorizer bool

func (c colorizer) colorize(color, msg string) string {
	if !c || color == "" {
		return msg
	}
	return color + msg + reset
}

// levelWriter routes the records with warning severity or above to the error
// output. Each record is written with a single call while holding the lock,
// so records from different goroutines are never interleaved.
type levelWriter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

func (w *levelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

func (w *levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if l >= zerolog.WarnLevel && l <= zerolog.PanicLevel {
		return w.errOut.Write(p)
	}
	return w.out.Write(p)
}
