package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"LiveBoard/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameSize   = 8 << 20
	peerSendBuffer = 256
)

// Relay fans draw and erase frames out between connected boards. It keeps
// no board state: frames are forwarded verbatim and never echoed back to
// their sender.
type Relay struct {
	reg      *Registry
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewRelay returns a relay with an empty registry.
func NewRelay(logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		reg: NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// boards on the LAN connect from anywhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger.With("component", "relay"),
	}
}

// Registry exposes the relay's peers.
func (r *Relay) Registry() *Registry { return r.reg }

// Handler routes /ws to the websocket endpoint and /healthz to a JSON
// status report listing the connected peers.
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", r.ServeWS)
	mux.HandleFunc("GET /healthz", withLogging(r.log, r.health))
	return mux
}

func (r *Relay) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(struct {
		Peers int      `json:"peers"`
		Host  string   `json:"host"`
		IDs   []string `json:"ids"`
	}{r.reg.Len(), r.reg.Host(), r.reg.IDs()})
	if err != nil {
		r.log.Error("failed to encode health response", "err", err)
	}
}

// ServeWS upgrades the request and serves the peer until it disconnects.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warn("websocket upgrade failed", "remote", req.RemoteAddr, "err", err)
		return
	}
	p := &peer{id: uuid.NewString(), conn: conn, send: make(chan []byte, peerSendBuffer)}
	log := r.log.With("peer", p.id, "remote", req.RemoteAddr)

	host, changed := r.reg.add(p)
	log.Info("peer connected", "peers", r.reg.Len(), "host", host)
	if hello, err := protocol.Encode(protocol.Message{Type: protocol.Hello, Peer: p.id, Host: host}); err == nil {
		p.send <- hello
	}
	if changed {
		r.announceHost(p.id, host)
	}

	go r.writePump(p, log)
	r.readPump(p, log)

	host, changed = r.reg.remove(p.id)
	close(p.send)
	log.Info("peer disconnected", "peers", r.reg.Len(), "host", host)
	if changed && host != "" {
		r.announceHost("", host)
	}
}

func (r *Relay) announceHost(except, host string) {
	frame, err := protocol.Encode(protocol.Message{Type: protocol.HostChanged, Host: host})
	if err != nil {
		return
	}
	r.reg.Broadcast(except, frame)
	r.log.Info("host changed", "host", host)
}

func (r *Relay) readPump(p *peer, log *slog.Logger) {
	defer p.conn.Close()
	p.conn.SetReadLimit(maxFrameSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, frame, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read failed", "err", err)
			}
			return
		}
		typ, err := protocol.PeekType(frame)
		if err != nil || !typ.Relayed() {
			log.Debug("ignoring frame", "type", typ, "err", err)
			continue
		}
		delivered, dropped := r.reg.Broadcast(p.id, frame)
		if dropped > 0 {
			log.Warn("slow peers missed a frame", "type", typ, "dropped", dropped)
		}
		log.Debug("relayed frame", "type", typ, "bytes", len(frame), "delivered", delivered)
	}
}

func (r *Relay) writePump(p *peer, log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug("write failed", "err", err)
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ListenAndServe serves the relay on addr until ctx is cancelled, then
// closes every peer and shuts the server down.
func (r *Relay) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		r.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("relay: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.reg.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("relay shutdown: %w", err)
	}
	r.log.Info("relay closed")
	return nil
}

// withLogging logs each request at debug level.
func withLogging(log *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next(w, req)
		log.Debug("request completed",
			"method", req.Method,
			"path", req.URL.Path,
			"remote", req.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
