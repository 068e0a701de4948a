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

package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gsalomao/mqlogger/internal/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.Nil(t, fs.Parse(args))
	return fs
}

func TestConfigValidate(t *testing.T) {
	conf := config.DefaultConfig
	err := conf.Validate()
	assert.NoError(t, err)
}

func TestConfigValidateError(t *testing.T) {
	testCases := []struct {
		err    string
		config string
		value  any
	}{
		{"server is required", "server", ""},
		{"port must be between 1 and 65535", "port", 0},
		{"port must be between 1 and 65535", "port", 65536},
		{"keepalive must be greater than 0", "keepalive", 0},
		{"topic is required", "topic", ""},
		{"connect_retry_interval must be greater than 0", "connect_retry_interval", 0},
		{"max_reconnect_interval must be no less than", "max_reconnect_interval", 0},
		{"newline is required", "newline", ""},
		{"log_level is invalid", "log_level", "invalid"},
		{"file_log_level is invalid", "file_log_level", "invalid"},
		{"poll_interval must be greater than 0", "poll_interval", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.err, func(t *testing.T) {
			js, err := json.Marshal(map[string]any{tc.config: tc.value})
			require.NoError(t, err)

			conf := config.DefaultConfig
			err = json.Unmarshal(js, &conf)
			require.NoError(t, err)

			err = conf.Validate()
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func TestConfigValidateHTTP(t *testing.T) {
	conf := config.DefaultConfig
	conf.HTTPEnabled = true
	assert.NoError(t, conf.Validate())

	conf.HTTPAddress = "invalid"
	assert.ErrorContains(t, conf.Validate(), "http_address is invalid")

	conf.HTTPAddress = ":8080"
	conf.MetricsPath = "metrics"
	assert.ErrorContains(t, conf.Validate(), "metrics_path must start with /")
}

func TestConfigReadConfigFileNotFound(t *testing.T) {
	err := config.ReadConfigFile(viper.New(), t.TempDir())
	assert.ErrorIs(t, err, config.ErrConfigFileNotFound)
}

func TestConfigReadConfigFileInvalid(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "mqlogger.conf"), []byte("port = = 1"), 0o600)
	require.Nil(t, err)

	err = config.ReadConfigFile(viper.New(), dir)
	assert.NotNil(t, err)
	assert.NotErrorIs(t, err, config.ErrConfigFileNotFound)
}

func TestConfigLoadConfigDefault(t *testing.T) {
	conf := config.DefaultConfig

	err := config.LoadConfig(viper.New(), newFlagSet(t), &conf)
	require.Nil(t, err)
	assert.Equal(t, config.DefaultConfig, conf)
}

func TestConfigLoadConfigFromFlags(t *testing.T) {
	topic := gofakeit.Word() + "/#"
	fs := newFlagSet(t,
		"-s", "broker.local",
		"--port", "8883",
		"-k", "30",
		"-t", topic,
		"-u", "user",
		"-p", "pass",
		"-f", "messages.log",
		"--timestamp-prefix",
		"--newline", `\r\n`,
		"--client-id", "logger-1",
		"--connect-retry",
		"--poll-interval", "50",
	)
	conf := config.DefaultConfig

	err := config.LoadConfig(viper.New(), fs, &conf)
	require.Nil(t, err)
	assert.Equal(t, "broker.local", conf.Server)
	assert.Equal(t, 8883, conf.Port)
	assert.Equal(t, 30, conf.KeepAlive)
	assert.Equal(t, topic, conf.Topic)
	assert.Equal(t, "user", conf.Username)
	assert.Equal(t, "pass", conf.Password)
	assert.Equal(t, "messages.log", conf.Filename)
	assert.True(t, conf.TimestampPrefix)
	assert.Equal(t, "\r\n", conf.Newline)
	assert.Equal(t, "logger-1", conf.ClientID)
	assert.True(t, conf.ConnectRetry)
	assert.Equal(t, 50, conf.PollInterval)
}

func TestConfigLoadConfigVerbose(t *testing.T) {
	conf := config.DefaultConfig

	err := config.LoadConfig(viper.New(), newFlagSet(t, "-v", "-l", "error"), &conf)
	require.Nil(t, err)
	assert.Equal(t, "debug", conf.LogLevel)
}

func TestConfigLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server = \"10.0.0.1\"\nport = 1884\ntopic = \"sensors/#\"\nhttp_enabled = true\n")
	require.Nil(t, os.WriteFile(filepath.Join(dir, "mqlogger.conf"), content, 0o600))

	v := viper.New()
	require.Nil(t, config.ReadConfigFile(v, dir))

	conf := config.DefaultConfig
	err := config.LoadConfig(v, newFlagSet(t, "--port", "1885"), &conf)
	require.Nil(t, err)
	assert.Equal(t, "10.0.0.1", conf.Server)
	assert.Equal(t, 1885, conf.Port)
	assert.Equal(t, "sensors/#", conf.Topic)
	assert.True(t, conf.HTTPEnabled)
	assert.Equal(t, config.DefaultConfig.KeepAlive, conf.KeepAlive)
}

func TestConfigLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MQLOGGER_SERVER", "broker.env")
	t.Setenv("MQLOGGER_KEEPALIVE", "15")
	t.Setenv("MQLOGGER_CLIENT_ID", "env-client")
	t.Setenv("MQLOGGER_CONNECT_RETRY", "true")

	conf := config.DefaultConfig
	err := config.LoadConfig(viper.New(), newFlagSet(t, "-k", "20"), &conf)
	require.Nil(t, err)
	assert.Equal(t, "broker.env", conf.Server)
	assert.Equal(t, 20, conf.KeepAlive)
	assert.Equal(t, "env-client", conf.ClientID)
	assert.True(t, conf.ConnectRetry)
}

func TestConfigPasswordNotEncoded(t *testing.T) {
	conf := config.DefaultConfig
	conf.Password = gofakeit.Password(true, true, true, false, false, 16)

	js, err := json.Marshal(conf)
	require.Nil(t, err)
	assert.NotContains(t, string(js), conf.Password)
}
