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
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gsalomao/mqlogger/internal/logger"
	"github.com/rs/xid"
)

// Status represents the state of the connection with the broker.
type Status int32

const (
	// StatusDisconnected indicates that there is no connection with the broker.
	StatusDisconnected Status = iota

	// StatusConnecting indicates that the client is trying to connect, or to
	// reconnect, with the broker.
	StatusConnecting

	// StatusConnected indicates that the broker accepted the connection.
	StatusConnected
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "invalid"
	}
}

type eventType int

const (
	eventConnected eventType = iota
	eventConnectionLost
	eventMessage
)

type event struct {
	kind    eventType
	seq     uint64
	code    ReasonCode
	topic   string
	payload []byte
	err     error
}

// Client is a MQTT client bound to a single broker endpoint.
//
// The network I/O runs on the goroutines of the underlying MQTT library. The
// events it generates are queued and delivered to the Handler by a single
// background goroutine, started with StartBackgroundIO, in the order they
// happened.
type Client struct {
	conf     Config
	clientID string
	handler  Handler
	log      *logger.Logger
	username string
	password string

	mu      sync.Mutex
	paho    paho.Client
	pending paho.Token
	running bool

	connSeq  atomic.Uint64
	closing  atomic.Bool
	events   chan event
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewClient creates a new Client. The handler receives all connection state
// transitions and inbound messages.
func NewClient(c Config, h Handler, log *logger.Logger) *Client {
	id := c.ClientID
	if id == "" {
		id = "mqlogger-" + xid.New().String()
	}

	return &Client{
		conf:     c.withDefaults(),
		clientID: id,
		handler:  h,
		log:      log,
		events:   make(chan event, eventsBufferSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// ClientID returns the client identifier sent to the broker.
func (c *Client) ClientID() string {
	return c.clientID
}

// SetCredentials sets the credentials used to connect with the broker. It must
// be called before Connect. The username and the password must be both
// provided or both empty.
func (c *Client) SetCredentials(username, password string) error {
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}

	c.username = username
	c.password = password
	return nil
}

// ValidateCredentials checks whether the username and the password are both
// provided or both empty.
func ValidateCredentials(username, password string) error {
	if username != "" && password == "" {
		return ErrMissingPassword
	}
	if username == "" && password != "" {
		return ErrMissingUsername
	}
	return nil
}

// Connect connects with the broker and blocks until the first attempt
// completes.
//
// If the broker could not be reached, it returns ErrConnectionFailed, unless
// the connection retry is enabled. A connection refused by the broker is not
// an error: the refusal is reported through the Handler.OnConnect, and the
// attempt is retried, once the background I/O is started.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.paho != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}

	cl := paho.NewClient(c.options())
	c.paho = cl
	c.mu.Unlock()

	c.log.Debug().
		Str("Broker", c.brokerURL()).
		Str("ClientID", c.clientID).
		Msg("Connecting to broker")

	tok := cl.Connect()
	select {
	case <-tok.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	err := tok.Error()
	if err == nil {
		return nil
	}

	code := connectReturnCode(tok)
	if code == ReasonNetworkError && !c.conf.ConnectRetry {
		c.mu.Lock()
		c.paho = nil
		c.mu.Unlock()
		return fmt.Errorf("%w (%s): %v", ErrConnectionFailed, code, err)
	}

	c.mu.Lock()
	c.pending = tok
	c.mu.Unlock()
	return nil
}

// Subscribe subscribes to the topic filter. It does not wait for the broker
// acknowledgement; a refused subscription is logged.
func (c *Client) Subscribe(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	c.mu.Lock()
	cl := c.paho
	c.mu.Unlock()

	if cl == nil || c.Status() != StatusConnected {
		return ErrNotConnected
	}

	c.log.Debug().
		Str("Topic", topic).
		Uint8("QoS", qos).
		Msg("Subscribing to topic")

	tok := cl.Subscribe(topic, qos, nil)
	go c.watchSubscription(tok, topic, qos)
	return nil
}

// StartBackgroundIO starts the goroutine which delivers the events to the
// Handler. If the connection retry is enabled, it also retries the failed
// connection attempts until the broker accepts the connection.
func (c *Client) StartBackgroundIO() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.stopped() {
		return
	}

	c.running = true
	pending := c.pending
	c.pending = nil

	starting := make(chan struct{})
	go func() {
		close(starting)
		c.run(pending)
	}()
	<-starting
}

// StopBackgroundIO stops the goroutine which delivers the events to the
// Handler. Once stopped, no event is delivered anymore. It blocks until the
// goroutine has stopped.
func (c *Client) StopBackgroundIO() {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	running := c.running
	c.mu.Unlock()

	if running {
		<-c.done
	}
}

// Disconnect closes the session with the broker. If the client was connected,
// the Handler.OnDisconnect is called with ReasonSuccess. Calling it when the
// client is already disconnected has no effect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cl := c.paho
	c.mu.Unlock()

	if cl == nil {
		return
	}

	wasConnected := cl.IsConnectionOpen()
	if !c.closing.CompareAndSwap(false, true) {
		return
	}

	c.log.Debug().Msg("Disconnecting from broker")
	cl.Disconnect(defaultDisconnectQuiesce)

	if wasConnected {
		c.handler.OnDisconnect(ReasonSuccess)
	}
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	cl := c.paho
	c.mu.Unlock()

	switch {
	case cl == nil || c.closing.Load():
		return StatusDisconnected
	case cl.IsConnectionOpen():
		return StatusConnected
	default:
		return StatusConnecting
	}
}

func (c *Client) brokerURL() string {
	return "tcp://" + net.JoinHostPort(c.conf.Host, strconv.Itoa(c.conf.Port))
}

func (c *Client) options() *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(c.brokerURL())
	opts.SetClientID(c.clientID)

	if c.username != "" {
		opts.SetUsername(c.username)
		opts.SetPassword(c.password)
	}

	// Subscriptions do not survive a disconnection, they are issued again on
	// each connection.
	opts.SetCleanSession(true)

	opts.SetKeepAlive(c.conf.KeepAlive)
	opts.SetConnectTimeout(c.conf.ConnectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(c.conf.MaxReconnectInterval)
	opts.SetOrderMatters(true)

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(c.onReconnecting)
	opts.SetDefaultPublishHandler(c.onMessage)

	return opts
}

func (c *Client) onConnect(_ paho.Client) {
	if c.closing.Load() {
		return
	}

	// The library calls each handler from its own goroutine, so the events of
	// an earlier connection may be delivered after the ones of a newer one.
	seq := c.connSeq.Add(1)
	c.push(event{kind: eventConnected, seq: seq, code: ReasonSuccess})
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	if c.closing.Load() {
		return
	}

	c.push(event{kind: eventConnectionLost, code: ReasonNetworkError, err: err})
}

func (c *Client) onReconnecting(_ paho.Client, _ *paho.ClientOptions) {
	c.log.Debug().Str("Broker", c.brokerURL()).Msg("Reconnecting to broker")
}

func (c *Client) onMessage(_ paho.Client, msg paho.Message) {
	c.push(event{kind: eventMessage, topic: msg.Topic(), payload: msg.Payload()})
}

func (c *Client) push(ev event) {
	select {
	case c.events <- ev:
	case <-c.stop:
	}
}

func (c *Client) stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *Client) run(pending paho.Token) {
	defer close(c.done)
	c.log.Trace().Msg("Background I/O started")

	var (
		tokenDone <-chan struct{}
		retry     *time.Timer
		retryCh   <-chan time.Time
		backoff   = c.conf.ConnectRetryInterval
	)

	if pending != nil {
		tokenDone = pending.Done()
	}

	for {
		select {
		case <-c.stop:
			if retry != nil {
				retry.Stop()
			}
			c.log.Trace().Msg("Background I/O stopped")
			return

		case ev := <-c.events:
			c.dispatch(ev)

		case <-tokenDone:
			tokenDone = nil
			if pending.Error() == nil {
				backoff = c.conf.ConnectRetryInterval
				continue
			}

			code := connectReturnCode(pending)
			c.log.Debug().
				Err(pending.Error()).
				Dur("RetryIn", backoff).
				Msg("Connection attempt failed")
			c.handler.OnConnect(c, code)

			retry = time.NewTimer(backoff)
			retryCh = retry.C
			backoff *= 2
			if backoff > c.conf.MaxReconnectInterval {
				backoff = c.conf.MaxReconnectInterval
			}

		case <-retryCh:
			retryCh = nil
			if c.closing.Load() {
				continue
			}

			c.mu.Lock()
			pending = c.paho.Connect()
			c.mu.Unlock()
			tokenDone = pending.Done()
		}
	}
}

func (c *Client) dispatch(ev event) {
	switch ev.kind {
	case eventConnected:
		if ev.seq != c.connSeq.Load() || c.Status() != StatusConnected {
			c.log.Trace().Uint64("Seq", ev.seq).Msg("Discarding stale connection event")
			return
		}
		c.log.Debug().Str("Broker", c.brokerURL()).Msg("Connected to broker")
		c.handler.OnConnect(c, ev.code)
	case eventConnectionLost:
		if ev.err != nil {
			c.log.Debug().Err(ev.err).Msg("Connection lost")
		}
		c.handler.OnDisconnect(ev.code)
	case eventMessage:
		c.handler.OnMessage(ev.topic, ev.payload)
	}
}

func (c *Client) watchSubscription(tok paho.Token, topic string, qos byte) {
	if !tok.WaitTimeout(defaultSubscribeTimeout) {
		c.log.Warn().Str("Topic", topic).Msg("Subscription not acknowledged by broker")
		return
	}

	if err := tok.Error(); err != nil {
		c.log.Error().Err(err).Str("Topic", topic).Msg("Failed to subscribe")
		return
	}

	if st, ok := tok.(*paho.SubscribeToken); ok {
		if granted, found := st.Result()[topic]; found && granted > maxQoS {
			c.log.Error().Str("Topic", topic).Msg("Subscription refused by broker")
			return
		}
	}

	c.log.Debug().Str("Topic", topic).Uint8("QoS", qos).Msg("Subscribed with success")
}

func connectReturnCode(tok paho.Token) ReasonCode {
	if ct, ok := tok.(*paho.ConnectToken); ok && ct.ReturnCode() != 0 {
		return ReasonCode(ct.ReturnCode())
	}
	return ReasonNetworkError
}
