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

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dimiro1/banner"
	"github.com/gsalomao/mqlogger/internal/api"
	"github.com/gsalomao/mqlogger/internal/config"
	"github.com/gsalomao/mqlogger/internal/dispatch"
	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/gsalomao/mqlogger/internal/metrics"
	"github.com/gsalomao/mqlogger/internal/mqtt"
	"github.com/gsalomao/mqlogger/internal/router"
	"github.com/gsalomao/mqlogger/internal/shutdown"
	"github.com/gsalomao/mqlogger/internal/sink"
	"github.com/mattn/go-colorable"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrStartFailed indicates that the logger could not start. The cause has
// already been reported into the console.
var ErrStartFailed = errors.New("failed to start")

var bannerTemplate = `{{ .Title "MQLogger" "" 0 }}
{{ .AnsiColor.BrightCyan }}  A MQTT subscriber which logs the received messages
{{ .AnsiColor.Default }}
`

// environment holds the external resources used while running.
type environment struct {
	out       io.Writer
	errOut    io.Writer
	bannerOut io.Writer
	fs        afero.Fs
	now       func() time.Time
	monitor   dispatch.ShutdownMonitor
}

func newCommandStart(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "start",
		Short:         "Start logger",
		Long:          "Start the MQLogger, subscribing to the topic until SIGINT or SIGTERM is received.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := config.DefaultConfig
			found, err := loadConfig(cmd.Flags(), &conf)
			if err != nil {
				_, _ = fmt.Fprintf(errOut, "Failed to load config: %s\n", err.Error())
				return ErrStartFailed
			}

			mon := shutdown.NewMonitor()
			mon.Start()
			defer mon.Stop()

			env := environment{
				out:       out,
				errOut:    errOut,
				bannerOut: colorable.NewColorableStdout(),
				fs:        afero.NewOsFs(),
				now:       time.Now,
				monitor:   mon,
			}
			return run(cmd.Context(), conf, found, env)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func loadConfig(fs *pflag.FlagSet, c *config.Config, paths ...string) (found bool, err error) {
	v := viper.New()

	err = config.ReadConfigFile(v, paths...)
	if err == nil {
		found = true
	} else if !errors.Is(err, config.ErrConfigFileNotFound) {
		return false, err
	}

	err = config.LoadConfig(v, fs, c)
	return found, err
}

func run(ctx context.Context, conf config.Config, confFileFound bool, env environment) error {
	sev, err := logger.ParseSeverity(conf.LogLevel)
	if err != nil {
		sev = logger.SeverityInfo
	}

	console := sink.NewConsole(env.out, env.errOut, sink.ConsoleOptions{
		Threshold: sev,
		NoColors:  conf.LogNoColor,
	})
	log := console.Logger()

	fail := func(msg string, err error) error {
		console.Write(logger.SeverityCritical, "", msg+": "+err.Error())
		return ErrStartFailed
	}

	if err = conf.Validate(); err != nil {
		return fail("Invalid configuration", err)
	}
	if err = mqtt.ValidateCredentials(conf.Username, conf.Password); err != nil {
		return fail("Invalid credentials", err)
	}

	if conf.Banner && env.bannerOut != nil {
		banner.InitString(env.bannerOut, true, !conf.LogNoColor, bannerTemplate)
	}

	if confFileFound {
		log.Info().Msg("Config file loaded with success")
	} else {
		log.Info().Msg("No config file found")
	}

	if cf, err := json.Marshal(conf); err == nil {
		log.Debug().RawJSON("Configuration", cf).Msg("Using configuration")
	}

	mqtt.SetLibraryLogger(log)

	var file *sink.File
	if conf.Filename != "" {
		fileSev, _ := logger.ParseSeverity(conf.FileLogLevel)

		file, err = sink.NewFile(sink.FileOptions{
			Path:            conf.Filename,
			Threshold:       fileSev,
			Newline:         conf.Newline,
			TimestampPrefix: conf.TimestampPrefix,
			RecordTimestamp: conf.RecordTimestamp,
			Fs:              env.fs,
			Now:             env.now,
			Diagnostic:      console,
		})
		if err != nil {
			return fail("Failed to open log file", err)
		}
		defer func() { _ = file.Close() }()

		log.Info().Str("Path", file.Path()).Msg("Logging messages into file")
	}

	reg := metrics.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fail("Failed to register metrics", err)
	}

	rc := router.Config{Topic: conf.Topic, Console: console, Metrics: m}
	if file != nil {
		rc.File = file
	}
	rt := router.New(rc)

	client := mqtt.NewClient(mqtt.Config{
		Host:                 conf.Server,
		Port:                 conf.Port,
		KeepAlive:            time.Duration(conf.KeepAlive) * time.Second,
		ClientID:             conf.ClientID,
		ConnectRetry:         conf.ConnectRetry,
		ConnectRetryInterval: time.Duration(conf.ConnectRetryInterval) * time.Second,
		MaxReconnectInterval: time.Duration(conf.MaxReconnectInterval) * time.Second,
	}, rt, log)

	if err = client.SetCredentials(conf.Username, conf.Password); err != nil {
		return fail("Invalid credentials", err)
	}

	if conf.HTTPEnabled {
		srv, err := api.NewServer(api.Config{
			Address:     conf.HTTPAddress,
			MetricsPath: conf.MetricsPath,
			Topic:       conf.Topic,
			ClientID:    client.ClientID(),
			Status:      func() string { return client.Status().String() },
			Gatherer:    reg,
		}, log)
		if err != nil {
			return fail("Failed to create HTTP server", err)
		}
		if err = srv.Start(); err != nil {
			return fail("Failed to start HTTP server", err)
		}
		defer srv.Stop()
	}

	log.Info().
		Str("Server", conf.Server).
		Int("Port", conf.Port).
		Str("Topic", conf.Topic).
		Str("ClientID", client.ClientID()).
		Msg("Logger started")

	loop := dispatch.NewLoop(client, env.monitor, time.Duration(conf.PollInterval)*time.Millisecond, log)
	if err = loop.Run(ctx); err != nil {
		return fail("Failed to connect to broker", err)
	}

	log.Info().Msg("Logger stopped")
	return nil
}
