package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
)

// Logger receives connection events. *logging.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// hooks holds the optional observers of connection state.
type hooks struct {
	logger       Logger
	onConnect    func()
	onDisconnect func(err error)
}

// Client publishes gateway state to an MQTT broker.
//
// The broker holds a retained status document on <prefix>/status: "online"
// after every (re)connect, "offline" on Close, and the will when the
// process dies without closing. paho handles reconnects; the client never
// subscribes.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	paho     pahomqtt.Client
	topics   Topics
	clientID string
	qos      byte

	up atomic.Bool

	hooksMu sync.RWMutex
	hooks   hooks
}

// Connect dials the broker and waits for the first CONNACK.
//
// Parameters:
//   - cfg: MQTT section of the configuration
//
// Returns:
//   - *Client: Connected client
//   - error: ErrConnectionFailed on timeout or broker refusal
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		topics:   NewTopics(cfg.TopicPrefix),
		clientID: cfg.Broker.ClientID,
		qos:      byte(cfg.QoS), //nolint:gosec // validated to 0..2 by config
	}

	opts := buildClientOptions(cfg)
	configureLWT(opts, c.topics, c.clientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.connected() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.lost(err) })

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: no CONNACK within %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The connect handler runs on a paho goroutine and may lag behind.
	c.up.Store(true)
	return c, nil
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

func (c *Client) observers() hooks {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	return c.hooks
}

func (c *Client) connected() {
	c.up.Store(true)
	c.paho.Publish(c.topics.Status(), c.qos, true, buildOnlinePayload(c.clientID))

	h := c.observers()
	if h.logger != nil {
		h.logger.Info("mqtt connected", "client_id", c.clientID)
	}
	if h.onConnect != nil {
		h.onConnect()
	}
}

func (c *Client) lost(err error) {
	c.up.Store(false)

	h := c.observers()
	if h.logger != nil {
		h.logger.Warn("mqtt connection lost", "error", err)
	}
	if h.onDisconnect != nil {
		h.onDisconnect(err)
	}
}

// Close publishes the graceful offline status and disconnects. Safe on a
// zero Client.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}
	if c.IsConnected() {
		c.paho.Publish(c.topics.Status(), c.qos, true, buildOfflinePayload(c.clientID)).
			WaitTimeout(publishTimeout)
	}
	c.paho.Disconnect(disconnectQuiesceMs)
	c.up.Store(false)
	return nil
}

// HealthCheck reports ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the link state as last seen by paho.
func (c *Client) IsConnected() bool {
	return c.paho != nil && c.up.Load() && c.paho.IsConnected()
}

// SetOnConnect registers a callback for the first connect and each reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.hooksMu.Lock()
	c.hooks.onConnect = callback
	c.hooksMu.Unlock()
}

// SetOnDisconnect registers a callback for connection loss.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.hooksMu.Lock()
	c.hooks.onDisconnect = callback
	c.hooksMu.Unlock()
}

// SetLogger sets the logger for connection events.
func (c *Client) SetLogger(logger Logger) {
	c.hooksMu.Lock()
	c.hooks.logger = logger
	c.hooksMu.Unlock()
}
