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

// Package api provides the HTTP server exporting the status of the client and
// the prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// StatusFunc returns the current connection status.
type StatusFunc func() string

// Config holds the Server configuration.
type Config struct {
	// TCP address (<IP>:<port>) where the server listens.
	Address string

	// The path where the metrics are exported.
	MetricsPath string

	// Topic filter reported in the status.
	Topic string

	// Client identifier reported in the status.
	ClientID string

	// Status returns the connection status.
	Status StatusFunc

	// Gatherer provides the exported metrics.
	Gatherer prometheus.Gatherer
}

// Status is the response of the status endpoint.
type Status struct {
	Status   string `json:"status"`
	Topic    string `json:"topic"`
	ClientID string `json:"client_id"`
}

// Server represents the HTTP server.
type Server struct {
	// Instance of the Echo framework.
	Echo *echo.Echo

	conf Config
	log  *logger.Logger
	addr net.Addr
	wg   sync.WaitGroup
}

// NewServer creates a new Server.
func NewServer(c Config, log *logger.Logger) (*Server, error) {
	if log == nil {
		return nil, errors.New("HTTP missing logger")
	}
	if c.Address == "" {
		return nil, errors.New("HTTP missing address")
	}
	if c.MetricsPath == "" {
		return nil, errors.New("HTTP missing metrics path")
	}
	if c.Status == nil || c.Gatherer == nil {
		return nil, errors.New("HTTP missing status or metrics")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = readTimeout
	e.Server.WriteTimeout = writeTimeout
	e.Use(middleware.RequestID())
	e.Use(fromLogger(log))

	s := &Server{Echo: e, conf: c, log: log}
	e.HTTPErrorHandler = s.handleError

	e.GET(c.MetricsPath, echo.WrapHandler(promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/api/v1/status", s.getStatus)

	return s, nil
}

// Start starts the Server. It does not block while the Server is running.
func (s *Server) Start() error {
	lsn, err := net.Listen("tcp", s.conf.Address)
	if err != nil {
		return err
	}

	s.addr = lsn.Addr()
	s.Echo.Listener = lsn
	s.log.Info().Msg("HTTP Listening on " + s.addr.String())

	starting := make(chan struct{})
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		close(starting)

		err := s.Echo.Start(s.conf.Address)
		if err != nil && err != http.ErrServerClosed {
			s.log.Error().Msg("HTTP Server failed: " + err.Error())
		}
	}()

	<-starting
	return nil
}

// Addr returns the address where the Server is listening. It returns nil if
// the Server is not started.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Stop stops the Server and waits until it has stopped.
func (s *Server) Stop() {
	s.log.Debug().Msg("HTTP Stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.Echo.Shutdown(ctx)
	if err != nil {
		_ = s.Echo.Close()
	}

	s.wg.Wait()
	s.log.Debug().Msg("HTTP Server stopped with success")
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, Status{
		Status:   s.conf.Status(),
		Topic:    s.conf.Topic,
		ClientID: s.conf.ClientID,
	})
}

func (s *Server) handleError(err error, c echo.Context) {
	httpErr, ok := err.(*echo.HTTPError)
	if ok {
		s.log.Debug().
			Str("Path", c.Path()).
			Int("Status", httpErr.Code).
			Msg(fmt.Sprintf("HTTP Request error: %v", httpErr.Message))
	} else {
		httpErr = echo.ErrInternalServerError
		s.log.Warn().Msg("HTTP Request error: " + err.Error())
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(httpErr.Code)
	} else {
		err = c.JSON(httpErr.Code, httpErr)
	}
	if err != nil {
		s.log.Error().
			Str("Path", c.Path()).
			Int("Status", httpErr.Code).
			Msg("HTTP Failed to send error response: " + err.Error())
	}
}
