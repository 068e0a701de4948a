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

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/rs/zerolog"
)

var (
	libraryLog     atomic.Pointer[logger.Logger]
	libraryLogOnce sync.Once
)

type pahoLogger struct {
	level zerolog.Level
}

func (l pahoLogger) Println(v ...interface{}) {
	if log := libraryLog.Load(); log != nil {
		log.WithLevel(l.level).Msg("MQTT library: " + strings.TrimSpace(fmt.Sprintln(v...)))
	}
}

func (l pahoLogger) Printf(format string, v ...interface{}) {
	if log := libraryLog.Load(); log != nil {
		log.WithLevel(l.level).Msg("MQTT library: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
	}
}

// SetLibraryLogger routes the logs generated by the underlying MQTT library
// into the provided logger. A nil logger discards them.
//
// The loggers of the library are package-level variables read by all its
// goroutines, so they are set only once and the provided logger is swapped
// atomically.
func SetLibraryLogger(log *logger.Logger) {
	libraryLogOnce.Do(func() {
		paho.CRITICAL = pahoLogger{level: zerolog.ErrorLevel}
		paho.ERROR = pahoLogger{level: zerolog.ErrorLevel}
		paho.WARN = pahoLogger{level: zerolog.WarnLevel}
		paho.DEBUG = pahoLogger{level: zerolog.TraceLevel}
	})
	libraryLog.Store(log)
}
