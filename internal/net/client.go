package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"LiveBoard/internal/protocol"
	"LiveBoard/internal/syncer"
)

// ErrSendBufferFull is returned by Client.Send when frames are queued
// faster than the connection drains them.
var ErrSendBufferFull = errors.New("send buffer full")

const (
	clientSendBuffer = 64
	minBackoff       = 250 * time.Millisecond
	maxBackoff       = 10 * time.Second
)

// Client is a board's connection to a relay. It reconnects with
// exponential backoff until its context ends and reports every change of
// connectivity on Connectivity.
type Client struct {
	url    string
	dialer *websocket.Dialer
	log    *slog.Logger

	out          chan []byte
	in           chan protocol.Message
	connectivity chan bool
	connected    atomic.Bool

	mu   sync.Mutex
	peer string
	host string
}

// NewClient prepares a client for the relay at addr ("host:port"). Nothing
// is dialled until Run.
func NewClient(addr string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	return &Client{
		url:          u.String(),
		dialer:       &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		log:          logger.With("component", "client", "relay", addr),
		out:          make(chan []byte, clientSendBuffer),
		in:           make(chan protocol.Message, clientSendBuffer),
		connectivity: make(chan bool, 16),
	}
}

func (c *Client) Inbound() <-chan protocol.Message { return c.in }
func (c *Client) Connectivity() <-chan bool        { return c.connectivity }
func (c *Client) Connected() bool                  { return c.connected.Load() }

// Peer is the ID the relay assigned to this client on its last connect.
func (c *Client) Peer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

// Host is the relay's current host peer.
func (c *Client) Host() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.host
}

// Send queues msg for the write pump without waiting on the network.
func (c *Client) Send(msg protocol.Message) error {
	if !c.connected.Load() {
		return syncer.ErrDisconnected
	}
	frame, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	select {
	case c.out <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Run keeps the client connected until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn("dial failed", "err", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff
		c.serve(ctx, conn)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Client) setConnected(ctx context.Context, up bool) {
	c.connected.Store(up)
	select {
	case c.connectivity <- up:
	case <-ctx.Done():
	}
}

// serve runs one connection until it fails or ctx ends.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	c.log.Info("connected")
	c.setConnected(ctx, true)
	defer c.setConnected(ctx, false)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			conn.Close()
		case <-done:
		}
	}()
	go c.writePump(conn, done)

	err := c.readPump(ctx, conn)
	conn.Close()
	if ctx.Err() == nil {
		c.log.Warn("disconnected", "err", err)
	}
}

func (c *Client) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		msg, err := protocol.Decode(frame)
		if err != nil {
			c.log.Warn("dropping frame", "err", err)
			continue
		}
		switch msg.Type {
		case protocol.Hello:
			c.mu.Lock()
			c.peer, c.host = msg.Peer, msg.Host
			c.mu.Unlock()
			c.log.Info("joined relay", "peer", msg.Peer, "host", msg.Host)
		case protocol.HostChanged:
			c.mu.Lock()
			c.host = msg.Host
			c.mu.Unlock()
			c.log.Info("host changed", "host", msg.Host)
		default:
			select {
			case c.in <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *Client) writePump(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case frame := <-c.out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Warn("write failed", "err", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
