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

// Package config loads the application configuration from the command line
// flags, the environment variables and the configuration file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrConfigFileNotFound indicates that no configuration file was found.
var ErrConfigFileNotFound = errors.New("config file not found")

// Config holds all the application configuration.
type Config struct {
	// Host name or IP address of the broker.
	Server string `json:"server" mapstructure:"server"`

	// TCP port of the broker.
	Port int `json:"port" mapstructure:"port"`

	// The MQTT Keep Alive, in seconds.
	KeepAlive int `json:"keepalive" mapstructure:"keepalive"`

	// Topic filter to subscribe to.
	Topic string `json:"topic" mapstructure:"topic"`

	// Username used to connect with the broker.
	Username string `json:"username" mapstructure:"username"`

	// Password used to connect with the broker.
	Password string `json:"-" mapstructure:"password"`

	// MQTT client identifier. If it's empty, an identifier is generated.
	ClientID string `json:"client_id" mapstructure:"client_id"`

	// Indicate whether the connection attempts are retried when the broker
	// cannot be reached at start. Refused connections are always retried.
	ConnectRetry bool `json:"connect_retry" mapstructure:"connect_retry"`

	// The amount of time, in seconds, to wait after the first failed
	// connection attempt.
	ConnectRetryInterval int `json:"connect_retry_interval" mapstructure:"connect_retry_interval"`

	// The maximum amount of time, in seconds, between connection attempts.
	MaxReconnectInterval int `json:"max_reconnect_interval" mapstructure:"max_reconnect_interval"`

	// Path of the file where the messages are logged. When it's empty, the
	// messages are logged only into the console.
	Filename string `json:"filename" mapstructure:"filename"`

	// Indicate whether the log file name is prefixed with the startup
	// timestamp or not.
	TimestampPrefix bool `json:"timestamp_prefix" mapstructure:"timestamp_prefix"`

	// Line terminator of the log file. Escape sequences are accepted.
	Newline string `json:"newline" mapstructure:"newline"`

	// Indicate whether each record in the log file starts with its
	// timestamp or not.
	RecordTimestamp bool `json:"record_timestamp" mapstructure:"record_timestamp"`

	// Minimal severity level of the records in the log file.
	FileLogLevel string `json:"file_log_level" mapstructure:"file_log_level"`

	// Minimal severity level of the console logs.
	LogLevel string `json:"log_level" mapstructure:"log_level"`

	// Indicate whether the console logs include the debug records or not.
	Verbose bool `json:"verbose" mapstructure:"verbose"`

	// Indicate whether the console logs have no colors or not.
	LogNoColor bool `json:"log_no_color" mapstructure:"log_no_color"`

	// Indicate whether the banner is printed at startup or not.
	Banner bool `json:"banner" mapstructure:"banner"`

	// The interval, in milliseconds, between two checks of the shutdown
	// request.
	PollInterval int `json:"poll_interval" mapstructure:"poll_interval"`

	// Indicate whether the HTTP server is enabled or not.
	HTTPEnabled bool `json:"http_enabled" mapstructure:"http_enabled"`

	// TCP address (<IP>:<port>) where the HTTP server listens.
	HTTPAddress string `json:"http_address" mapstructure:"http_address"`

	// The path where the metrics are exported.
	MetricsPath string `json:"metrics_path" mapstructure:"metrics_path"`
}

// DefaultConfig is the default configuration.
var DefaultConfig = Config{
	Server:               "127.0.0.1",
	Port:                 1883,
	KeepAlive:            60,
	Topic:                "#",
	ConnectRetry:         false,
	ConnectRetryInterval: 1,
	MaxReconnectInterval: 600,
	Newline:              "\n",
	RecordTimestamp:      true,
	FileLogLevel:         "info",
	LogLevel:             "info",
	Banner:               true,
	PollInterval:         100,
	HTTPAddress:          ":8888",
	MetricsPath:          "/metrics",
}

type flag struct {
	key   string
	name  string
	short string
	usage string
}

var flags = []flag{
	{"server", "server", "s", "Host name or IP address of the broker"},
	{"port", "port", "", "TCP port of the broker"},
	{"keepalive", "keepalive", "k", "MQTT Keep Alive, in seconds"},
	{"topic", "topic", "t", "Topic filter to subscribe to"},
	{"username", "username", "u", "Username used to connect with the broker"},
	{"password", "password", "p", "Password used to connect with the broker"},
	{"client_id", "client-id", "", "MQTT client identifier (generated when empty)"},
	{"connect_retry", "connect-retry", "", "Keep retrying when the broker cannot be reached at start"},
	{"connect_retry_interval", "connect-retry-interval", "", "Interval, in seconds, after the first failed connection"},
	{"max_reconnect_interval", "max-reconnect-interval", "", "Maximum interval, in seconds, between connection attempts"},
	{"filename", "filename", "f", "Log the messages into the file"},
	{"timestamp_prefix", "timestamp-prefix", "", "Prefix the log file name with the startup timestamp"},
	{"newline", "newline", "", "Line terminator of the log file"},
	{"record_timestamp", "record-timestamp", "", "Start each record in the log file with its timestamp"},
	{"file_log_level", "file-log-level", "", "Minimal severity level of the log file"},
	{"log_level", "log-level", "l", "Minimal severity level of the console logs"},
	{"verbose", "verbose", "v", "Include the debug records into the console logs"},
	{"log_no_color", "log-no-color", "", "Disable the colors of the console logs"},
	{"banner", "banner", "", "Print the banner at startup"},
	{"poll_interval", "poll-interval", "", "Interval, in milliseconds, between two checks of the shutdown request"},
	{"http_enabled", "http-enabled", "", "Enable the HTTP server with the status and the metrics"},
	{"http_address", "http-address", "", "TCP address where the HTTP server listens"},
	{"metrics_path", "metrics-path", "", "Path where the metrics are exported"},
}

// RegisterFlags registers the command line flags, using the DefaultConfig as
// default values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig
	values := map[string]interface{}{
		"server":                 d.Server,
		"port":                   d.Port,
		"keepalive":              d.KeepAlive,
		"topic":                  d.Topic,
		"username":               d.Username,
		"password":               d.Password,
		"client_id":              d.ClientID,
		"connect_retry":          d.ConnectRetry,
		"connect_retry_interval": d.ConnectRetryInterval,
		"max_reconnect_interval": d.MaxReconnectInterval,
		"filename":               d.Filename,
		"timestamp_prefix":       d.TimestampPrefix,
		"newline":                d.Newline,
		"record_timestamp":       d.RecordTimestamp,
		"file_log_level":         d.FileLogLevel,
		"log_level":              d.LogLevel,
		"verbose":                d.Verbose,
		"log_no_color":           d.LogNoColor,
		"banner":                 d.Banner,
		"poll_interval":          d.PollInterval,
		"http_enabled":           d.HTTPEnabled,
		"http_address":           d.HTTPAddress,
		"metrics_path":           d.MetricsPath,
	}

	for _, f := range flags {
		switch v := values[f.key].(type) {
		case string:
			fs.StringP(f.name, f.short, v, f.usage)
		case int:
			fs.IntP(f.name, f.short, v, f.usage)
		case bool:
			fs.BoolP(f.name, f.short, v, f.usage)
		}
	}
}

// ReadConfigFile reads the configuration file into v.
//
// The configuration file is named mqlogger.conf, in the TOML format, and it
// can be stored at one of the following locations:
//   - the directory of the executable
//   - the parent directory of the executable
//   - /etc/mqlogger
//   - /etc
//
// If paths are provided, they replace the locations above.
func ReadConfigFile(v *viper.Viper, paths ...string) error {
	v.SetConfigName("mqlogger.conf")
	v.SetConfigType("toml")

	if len(paths) == 0 {
		if exe, err := os.Executable(); err == nil {
			pwd := filepath.Dir(exe)
			paths = append(paths, pwd, filepath.Dir(pwd))
		}
		paths = append(paths, "/etc/mqlogger", "/etc")
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return ErrConfigFileNotFound
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// LoadConfig loads the configuration into c. The values are taken, in order
// of precedence, from the command line flags set by the user, the environment
// variables with the MQLOGGER prefix, the configuration file, and the current
// values of c.
//
// Note: The ReadConfigFile must be called before in order to load the
// configuration from the conf file.
func LoadConfig(v *viper.Viper, fs *pflag.FlagSet, c *Config) error {
	v.SetEnvPrefix("MQLOGGER")
	v.AutomaticEnv()

	// Makes all keys known, so the Unmarshal checks their env variables.
	for _, f := range flags {
		_ = v.BindEnv(f.key)
	}

	if fs != nil {
		for _, f := range flags {
			pf := fs.Lookup(f.name)
			if pf == nil || !pf.Changed {
				continue
			}
			if err := v.BindPFlag(f.key, pf); err != nil {
				return err
			}
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return err
	}

	c.Newline = unescape(c.Newline)
	if c.Verbose {
		c.LogLevel = logger.SeverityDebug.String()
	}
	return nil
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Server == "" {
		return errors.New("server is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.KeepAlive < 1 {
		return errors.New("keepalive must be greater than 0")
	}
	if c.Topic == "" {
		return errors.New("topic is required")
	}
	if c.ConnectRetryInterval < 1 {
		return errors.New("connect_retry_interval must be greater than 0")
	}
	if c.MaxReconnectInterval < c.ConnectRetryInterval {
		return errors.New("max_reconnect_interval must be no less than connect_retry_interval")
	}
	if c.Newline == "" {
		return errors.New("newline is required")
	}
	if _, err := logger.ParseSeverity(c.LogLevel); err != nil {
		return fmt.Errorf("log_level is invalid: %w", err)
	}
	if _, err := logger.ParseSeverity(c.FileLogLevel); err != nil {
		return fmt.Errorf("file_log_level is invalid: %w", err)
	}
	if c.PollInterval < 1 {
		return errors.New("poll_interval must be greater than 0")
	}
	if c.HTTPEnabled {
		if _, _, err := net.SplitHostPort(c.HTTPAddress); err != nil {
			return fmt.Errorf("http_address is invalid: %w", err)
		}
		if c.MetricsPath == "" || c.MetricsPath[0] != '/' {
			return errors.New("metrics_path must start with /")
		}
	}
	return nil
}

// unescape converts the escape sequences, such as \r\n, given literally into
// their characters. Invalid sequences are kept as they are.
func unescape(s string) string {
	u, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return u
}
