package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mordilloSan/go-logger/logger"
)

const (
	// EventStateChanged is the event type carrying entity state updates
	EventStateChanged = "state_changed"

	subscriberBuffer = 64
	writeTimeout     = 10 * time.Second
)

// Client is a Home Assistant websocket API client.
// It is safe for concurrent use.
type Client struct {
	url  string
	conn *websocket.Conn

	writeMu sync.Mutex
	nextID  atomic.Int64

	mu      sync.Mutex
	pending map[int64]func(message)
	subs    map[int64]chan StateChange

	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// WebsocketURL turns a Home Assistant base URL (http, https, ws or wss) into its websocket API endpoint
func WebsocketURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid home assistant url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid home assistant url %q: unsupported scheme %q", base, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid home assistant url %q: missing host", base)
	}
	if !strings.HasSuffix(u.Path, "/api/websocket") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/api/websocket"
	}
	return u.String(), nil
}

// Dial connects and authenticates against the websocket API at base
func Dial(ctx context.Context, base, token string) (*Client, error) {
	wsURL, err := WebsocketURL(base)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", wsURL, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	if err := authenticate(conn, wsURL, token); err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	c := &Client{
		url:     wsURL,
		conn:    conn,
		pending: make(map[int64]func(message)),
		subs:    make(map[int64]chan StateChange),
		done:    make(chan struct{}),
	}
	go c.readLoop()

	logger.InfoKV("home assistant connected", "url", wsURL)
	return c, nil
}

func authenticate(conn *websocket.Conn, wsURL, token string) error {
	var m message
	if err := conn.ReadJSON(&m); err != nil {
		return fmt.Errorf("read auth request: %w", err)
	}
	if m.Type != "auth_required" {
		return fmt.Errorf("unexpected message %q during handshake", m.Type)
	}

	if err := conn.WriteJSON(message{Type: "auth", AccessToken: token}); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	m = message{}
	if err := conn.ReadJSON(&m); err != nil {
		return fmt.Errorf("read auth response: %w", err)
	}
	switch m.Type {
	case "auth_ok":
		logger.DebugKV("home assistant authenticated", "ha_version", m.HAVersion)
		return nil
	case "auth_invalid":
		return &AuthError{URL: wsURL, Message: m.Message}
	default:
		return fmt.Errorf("unexpected message %q during handshake", m.Type)
	}
}

func (c *Client) readLoop() {
	for {
		var m message
		if err := c.conn.ReadJSON(&m); err != nil {
			c.shutdown(fmt.Errorf("%w: %v", ErrClosed, err))
			c.closeSubscribers()
			return
		}

		switch m.Type {
		case "result":
			c.mu.Lock()
			handler, ok := c.pending[m.ID]
			delete(c.pending, m.ID)
			c.mu.Unlock()
			if ok {
				handler(m)
			}

		case "event":
			c.dispatchEvent(m)

		default:
			logger.DebugKV("home assistant message ignored", "type", m.Type, "id", m.ID)
		}
	}
}

func (c *Client) dispatchEvent(m message) {
	if m.Event == nil || m.Event.EventType != EventStateChanged {
		return
	}

	c.mu.Lock()
	ch, ok := c.subs[m.ID]
	c.mu.Unlock()
	if !ok {
		return
	}

	var change StateChange
	if err := json.Unmarshal(m.Event.Data, &change); err != nil {
		logger.WarnKV("malformed state_changed event", "error", err)
		return
	}

	// Events are delivered one at a time, in order
	select {
	case ch <- change:
	case <-c.done:
	}
}

func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.err = err
		close(c.done)
		c.conn.Close()

		c.mu.Lock()
		c.pending = map[int64]func(message){}
		c.mu.Unlock()
	})
}

// closeSubscribers runs on the read loop, the only sender on subscriber channels
func (c *Client) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

func (c *Client) send(m message) error {
	select {
	case <-c.done:
		return c.Err()
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("send %s: %w", m.Type, err)
	}
	return nil
}

// request sends m and waits for its result
func (c *Client) request(ctx context.Context, m message) (message, error) {
	m.ID = c.nextID.Add(1)
	ch := make(chan message, 1)

	c.mu.Lock()
	c.pending[m.ID] = func(res message) { ch <- res }
	c.mu.Unlock()

	if err := c.send(m); err != nil {
		c.forget(m.ID)
		return message{}, err
	}

	select {
	case res := <-ch:
		if res.Success != nil && !*res.Success {
			if res.Error != nil {
				return res, res.Error
			}
			return res, fmt.Errorf("%s failed", m.Type)
		}
		return res, nil
	case <-ctx.Done():
		c.forget(m.ID)
		return message{}, ctx.Err()
	case <-c.done:
		return message{}, c.Err()
	}
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// GetStates returns every entity state known to the server
func (c *Client) GetStates(ctx context.Context) ([]State, error) {
	res, err := c.request(ctx, message{Type: "get_states"})
	if err != nil {
		return nil, err
	}
	var states []State
	if err := json.Unmarshal(res.Result, &states); err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}
	return states, nil
}

// SubscribeStateChanges subscribes to state_changed events.
// The channel is closed when the client closes.
func (c *Client) SubscribeStateChanges(ctx context.Context) (<-chan StateChange, error) {
	id := c.nextID.Add(1)
	ch := make(chan StateChange, subscriberBuffer)
	result := make(chan message, 1)

	c.mu.Lock()
	c.subs[id] = ch
	c.pending[id] = func(res message) { result <- res }
	c.mu.Unlock()

	unsubscribe := func() {
		c.mu.Lock()
		delete(c.subs, id)
		delete(c.pending, id)
		c.mu.Unlock()
	}

	if err := c.send(message{ID: id, Type: "subscribe_events", EventType: EventStateChanged}); err != nil {
		unsubscribe()
		return nil, err
	}

	select {
	case res := <-result:
		if res.Success != nil && !*res.Success {
			unsubscribe()
			if res.Error != nil {
				return nil, res.Error
			}
			return nil, fmt.Errorf("subscribe_events failed")
		}
		return ch, nil
	case <-ctx.Done():
		unsubscribe()
		return nil, ctx.Err()
	case <-c.done:
		unsubscribe()
		return nil, c.Err()
	}
}

// CallService sends a call_service command without waiting for the backend to finish.
// A failed result is only logged.
func (c *Client) CallService(_ context.Context, domain, service string, data map[string]any) error {
	id := c.nextID.Add(1)

	c.mu.Lock()
	c.pending[id] = func(res message) {
		if res.Success != nil && !*res.Success {
			logger.WarnKV("service call failed", "domain", domain, "service", service, "error", res.Error)
			return
		}
		logger.DebugKV("service call completed", "domain", domain, "service", service)
	}
	c.mu.Unlock()

	if err := c.send(message{ID: id, Type: "call_service", Domain: domain, Service: service, ServiceData: data}); err != nil {
		c.forget(id)
		return err
	}
	logger.InfoKV("service call sent", "domain", domain, "service", service, "id", id)
	return nil
}

// Err returns why the connection ended, or nil while it is open
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()
	c.shutdown(ErrClosed)
	return nil
}
