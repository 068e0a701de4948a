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

package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gsalomao/mqlogger/internal/cli"
	"github.com/stretchr/testify/assert"
)

func TestCLIRun(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		out  string
	}{
		{"Usage", []string{}, "MQLogger subscribes to a MQTT broker and logs the received messages."},
		{"ShortVersion", []string{"--version"}, "MQLogger 0.0.0-dev"},
		{"Version", []string{"version"}, "Go Version:"},
		{"VersionHelp", []string{"version", "--help"}, "Show version and build summary"},
		{"StartHelp", []string{"start", "--help"}, "Start the MQLogger"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := bytes.NewBufferString("")
			errOut := bytes.NewBufferString("")
			c := cli.New(out, errOut, tc.args)

			err := c.Run(context.Background())
			assert.Nil(t, err)
			assert.Contains(t, out.String(), tc.out)
		})
	}
}

func TestCLIRunStartFlags(t *testing.T) {
	out := bytes.NewBufferString("")
	c := cli.New(out, bytes.NewBufferString(""), []string{"start", "--help"})

	err := c.Run(context.Background())
	assert.Nil(t, err)
	for _, flag := range []string{
		"--server", "--port", "--keepalive", "--topic", "--username",
		"--password", "--filename", "--timestamp-prefix", "--newline",
		"--log-level", "--verbose",
	} {
		assert.Contains(t, out.String(), flag)
	}
}

func TestCLIRunStartInvalidConfig(t *testing.T) {
	out := bytes.NewBufferString("")
	errOut := bytes.NewBufferString("")
	c := cli.New(out, errOut, []string{"start", "--port", "0", "--banner=false", "--log-no-color"})

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, cli.ErrStartFailed)
	assert.Contains(t, errOut.String(), "| CRITICAL | Invalid configuration: port must be between 1 and 65535")
}

func TestCLIRunStartUnknownFlag(t *testing.T) {
	c := cli.New(bytes.NewBufferString(""), bytes.NewBufferString(""), []string{"start", "--invalid"})

	err := c.Run(context.Background())
	assert.NotNil(t, err)
}
