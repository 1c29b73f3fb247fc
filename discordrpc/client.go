// Package discordrpc implements the overlay's session against the local
// Discord client's RPC websocket: connection, authentication handshake,
// channel subscriptions, and translation of inbound events into voice state.
package discordrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"nhooyr.io/websocket"
)

const (
	// DefaultEndpoint is the local RPC websocket exposed by the Discord client.
	DefaultEndpoint = "ws://127.0.0.1:6463"
	// DefaultOrigin is the web origin the local client permits on its RPC surface.
	DefaultOrigin = "https://streamkit.discord.com"
	// DefaultClientID is the application identifier sent with the connection.
	DefaultClientID = "207646673902501888"
)

// Client owns the single persistent websocket connection to the RPC socket.
type Client struct {
	url     string
	origin  string
	conn    *websocket.Conn
	msgChan chan Payload
	errChan chan error
	done    chan struct{}
	closed  bool
	mu      sync.Mutex
}

// ClientConfig holds configuration for the RPC Client.
type ClientConfig struct {
	ClientID string
	Endpoint string
	Origin   string
}

// NewClient creates a new RPC Client.
func NewClient(cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	origin := cfg.Origin
	if origin == "" {
		origin = DefaultOrigin
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	return &Client{
		url:     fmt.Sprintf("%s/?v=1&client_id=%s", endpoint, clientID),
		origin:  origin,
		msgChan: make(chan Payload, 100),
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}
}

// Connect establishes the websocket connection. The local client rejects
// connections without an allowed Origin header.
func (c *Client) Connect(ctx context.Context) error {
	opts := &websocket.DialOptions{
		HTTPHeader: map[string][]string{
			"Origin": {c.origin},
		},
	}

	conn, _, err := websocket.Dial(ctx, c.url, opts)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn

	// Start reading loop
	go c.readLoop()

	return nil
}

// Send serializes the frame and writes it to the socket.
func (c *Client) Send(ctx context.Context, out Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Messages returns a channel delivering inbound payloads in arrival order.
// The channel closes when the connection drops; there is no reconnect.
func (c *Client) Messages() <-chan Payload {
	return c.msgChan
}

// Errors returns a channel for receiving errors.
func (c *Client) Errors() <-chan error {
	return c.errChan
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)

	if c.conn != nil {
		return c.conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

func (c *Client) readLoop() {
	defer close(c.msgChan)

	ctx := context.Background()

	for {
		select {
		case <-c.done:
			return
		default:
			typ, data, err := c.conn.Read(ctx)
			if err != nil {
				c.errChan <- fmt.Errorf("read error: %w", err)
				return
			}

			// Non-text frames are ignored.
			if typ != websocket.MessageText {
				continue
			}

			payload, err := ParsePayload(data)
			if err != nil {
				slog.Error("failed to parse payload", "error", err, "data", string(data))
				continue
			}

			select {
			case c.msgChan <- payload:
			case <-c.done:
				return
			}
		}
	}
}
