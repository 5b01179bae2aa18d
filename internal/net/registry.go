package net

import (
	"slices"
	"sync"

	"github.com/gorilla/websocket"
)

// peer is one connected board as seen by the relay. Frames queued on send
// are written by the peer's own write pump.
type peer struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Registry is the relay's set of live peers in connection order, plus the
// current host.
type Registry struct {
	mu    sync.RWMutex
	order []string
	peers map[string]*peer
	host  string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]*peer)}
}

// ElectHost keeps current as host while it is still connected and
// otherwise picks the longest-connected peer. It returns "" when nobody is
// connected.
func ElectHost(current string, ids []string) string {
	if current != "" && slices.Contains(ids, current) {
		return current
	}
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (r *Registry) add(p *peer) (host string, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p.id] = p
	r.order = append(r.order, p.id)
	return r.elect()
}

// remove forgets a peer. Once it returns no Broadcast can reach the
// peer's send channel.
func (r *Registry) remove(id string) (host string, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[id]; !ok {
		return r.host, false
	}
	delete(r.peers, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return r.elect()
}

func (r *Registry) elect() (string, bool) {
	next := ElectHost(r.host, r.order)
	changed := next != r.host
	r.host = next
	return next, changed
}

// Host returns the current host's peer ID.
func (r *Registry) Host() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host
}

// IDs returns the connected peer IDs in connection order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of connected peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Broadcast queues frame for every peer except from. A peer whose queue is
// full misses the frame rather than holding up the others.
func (r *Registry) Broadcast(from string, frame []byte) (delivered, dropped int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if id == from {
			continue
		}
		select {
		case r.peers[id].send <- frame:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped
}

// closeAll closes every peer's socket so its pumps wind down.
func (r *Registry) closeAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.peers {
		if p.conn != nil {
			p.conn.Close()
		}
	}
}
