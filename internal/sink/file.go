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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/spf13/afero"
)

const (
	// PrefixLayout is the time layout of the prefix added to the file name.
	PrefixLayout = "2006-01-02_15-04_"

	recordTimeLayout = "2006-01-02 15:04:05"
)

// ErrFileSinkOpen indicates that the file sink could not open its file.
var ErrFileSinkOpen = errors.New("failed to open file sink")

// FileOptions are options for the File sink.
type FileOptions struct {
	// Path is the configured destination file.
	Path string

	// Threshold is the minimum severity written by the sink.
	Threshold logger.Severity

	// Newline is the line terminator. If it's empty, "\n" is used.
	Newline string

	// TimestampPrefix indicates whether the startup time is added as prefix to
	// the file name.
	TimestampPrefix bool

	// RecordTimestamp indicates whether each record starts with a timestamp
	// line.
	RecordTimestamp bool

	// Fs is the file system where the file is created. If it's not provided,
	// the OS file system is used.
	Fs afero.Fs

	// Now returns the current time. If it's not provided, time.Now is used.
	Now func() time.Time

	// Diagnostic receives the errors which happen after the file is opened.
	Diagnostic Sink
}

// File is the sink which writes the records into a file. The file is opened,
// and truncated, only once when the sink is created.
type File struct {
	mu        sync.Mutex
	file      afero.File
	path      string
	threshold logger.Severity
	newline   string
	timestamp bool
	now       func() time.Time
	diag      Sink
	failed    bool
	closed    bool
}

// NewFile creates a File sink and opens its file in truncate mode.
func NewFile(opts FileOptions) (*File, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	newline := opts.Newline
	if newline == "" {
		newline = "\n"
	}

	path := ResolvePath(opts.Path, opts.TimestampPrefix, now())

	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrFileSinkOpen, path, err)
	}

	return &File{
		file:      f,
		path:      path,
		threshold: opts.Threshold,
		newline:   newline,
		timestamp: opts.RecordTimestamp,
		now:       now,
		diag:      opts.Diagnostic,
	}, nil
}

// ResolvePath returns the path of the file sink. When the prefix is enabled,
// the time t formatted with the PrefixLayout is added before the file name.
func ResolvePath(path string, prefix bool, t time.Time) string {
	if !prefix {
		return path
	}

	dir, name := filepath.Split(path)
	return dir + t.Format(PrefixLayout) + name
}

// Path returns the path of the opened file.
func (s *File) Path() string {
	return s.path
}

// Write appends a record with the topic and the message, each one followed by
// the line terminator.
//
// If the file cannot be written, an error is reported to the diagnostic sink
// and the File sink discards all the following records.
func (s *File) Write(severity logger.Severity, topic, msg string) {
	if severity < s.threshold {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed || s.closed {
		return
	}

	var record string
	if s.timestamp {
		record = s.now().Format(recordTimeLayout) + s.newline
	}
	record += topic + s.newline + msg + s.newline

	_, err := s.file.WriteString(record)
	if err != nil {
		s.failed = true
		if s.diag != nil {
			s.diag.Write(logger.SeverityError, "",
				"Failed to write into file "+s.path+", file logging disabled: "+err.Error())
		}
	}
}

// Failed returns true if a write has failed and the sink has been disabled.
func (s *File) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Close closes the file. All records written after Close are discarded.
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.file.Close()
}
