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

// Package cli provides the command line interface of the application.
package cli

import (
	"context"
	"io"

	"github.com/gsalomao/mqlogger/internal/build"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface.
type CLI struct {
	rootCmd *cobra.Command
}

// New creates an instance of the command line interface. The command outputs
// are written into out, and the error logs into errOut.
func New(out, errOut io.Writer, args []string) CLI {
	description := "MQLogger subscribes to a MQTT broker and logs the received messages."
	cli := CLI{
		rootCmd: &cobra.Command{
			Use:     "mqlogger",
			Version: build.GetInfo().ShortVersion(),
			Short:   "MQLogger is a MQTT subscriber logger",
			Long:    description,
		},
	}

	cli.rootCmd.CompletionOptions.DisableDefaultCmd = true
	cli.rootCmd.SetVersionTemplate("{{printf .Version}}")
	cli.rootCmd.SetArgs(args)
	cli.rootCmd.SetOut(out)
	cli.rootCmd.SetErr(errOut)

	cli.rootCmd.AddCommand(newCommandStart(out, errOut))
	cli.rootCmd.AddCommand(newCommandVersion())

	return cli
}

// Run executes the command line interface.
func (c CLI) Run(ctx context.Context) error {
	return c.rootCmd.ExecuteContext(ctx)
}

func newCommandVersion() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		Short:                 "Show version and build summary",
		Long:                  "Show version and build summary.",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(build.GetInfo().LongVersion() + "\n"))
			return err
		},
	}
}
