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

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gsalomao/mqlogger/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig() Config {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "Test counter"})
	reg.MustRegister(c)
	c.Inc()

	return Config{
		Address:     "127.0.0.1:0",
		MetricsPath: "/metrics",
		Topic:       "sensors/#",
		ClientID:    gofakeit.Username(),
		Status:      func() string { return "connected" },
		Gatherer:    reg,
	}
}

func TestServerNewServerErrors(t *testing.T) {
	logStub := mocks.NewLoggerStub()

	t.Run("MissingLogger", func(t *testing.T) {
		_, err := NewServer(newConfig(), nil)
		assert.ErrorContains(t, err, "missing logger")
	})

	t.Run("MissingAddress", func(t *testing.T) {
		c := newConfig()
		c.Address = ""
		_, err := NewServer(c, logStub.Logger())
		assert.ErrorContains(t, err, "missing address")
	})

	t.Run("MissingMetricsPath", func(t *testing.T) {
		c := newConfig()
		c.MetricsPath = ""
		_, err := NewServer(c, logStub.Logger())
		assert.ErrorContains(t, err, "missing metrics path")
	})

	t.Run("MissingStatus", func(t *testing.T) {
		c := newConfig()
		c.Status = nil
		_, err := NewServer(c, logStub.Logger())
		assert.ErrorContains(t, err, "missing status")
	})
}

func TestServerGetStatus(t *testing.T) {
	logStub := mocks.NewLoggerStub()
	c := newConfig()
	s, err := NewServer(c, logStub.Logger())
	require.Nil(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var st Status
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, Status{Status: "connected", Topic: c.Topic, ClientID: c.ClientID}, st)
	assert.Contains(t, logStub.String(), "HTTP Request received")
}

func TestServerGetMetrics(t *testing.T) {
	logStub := mocks.NewLoggerStub()
	s, err := NewServer(newConfig(), logStub.Logger())
	require.Nil(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_total 1")
}

func TestServerGetNotFound(t *testing.T) {
	logStub := mocks.NewLoggerStub()
	s, err := NewServer(newConfig(), logStub.Logger())
	require.Nil(t, err)

	req := httptest.NewRequest(http.MethodGet, "/invalid", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Found")
}

func TestServerStartAndStop(t *testing.T) {
	logStub := mocks.NewLoggerStub()
	s, err := NewServer(newConfig(), logStub.Logger())
	require.Nil(t, err)

	require.Nil(t, s.Start())
	require.NotNil(t, s.Addr())
	assert.Contains(t, logStub.String(), "HTTP Listening on "+s.Addr().String())

	resp, err := http.Get("http://" + s.Addr().String() + "/api/v1/status")
	require.Nil(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"connected"`)

	s.Stop()
	assert.Contains(t, logStub.String(), "HTTP Server stopped with success")
}

func TestServerStartInvalidAddress(t *testing.T) {
	logStub := mocks.NewLoggerStub()
	c := newConfig()
	c.Address = "invalid"

	s, err := NewServer(c, logStub.Logger())
	require.Nil(t, err)
	assert.NotNil(t, s.Start())
}
