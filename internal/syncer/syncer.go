// Package syncer moves edits between the local store and the relay. Local
// edits leave in batches on every flush; remote batches are buffered on
// arrival and merged by Drain.
package syncer

import (
	"errors"
	"log/slog"

	"LiveBoard/internal/protocol"
	"LiveBoard/internal/state"
)

// State is the connection state as seen by the engine.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// ErrDisconnected is returned by a Sender that has no live connection.
var ErrDisconnected = errors.New("not connected to relay")

// Sender delivers one message to the relay. Send must not block on the
// network.
type Sender interface {
	Send(msg protocol.Message) error
}

// Stats counts traffic since the engine was created.
type Stats struct {
	SentMessages     int
	SentElements     int
	ReceivedMessages int
	FailedSends      int
	Dropped          int
}

// Engine is not safe for concurrent use; the board drives it from its
// event loop.
type Engine struct {
	store  *state.Store
	outbox *state.Outbox
	sender Sender
	log    *slog.Logger

	state State
	inbox []protocol.Message
	stats Stats
}

// New returns a disconnected engine.
func New(store *state.Store, outbox *state.Outbox, sender Sender, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		outbox: outbox,
		sender: sender,
		log:    logger.With("component", "sync"),
	}
}

func (e *Engine) State() State { return e.state }

// SetConnected records a transport state change. It reports whether the
// state changed.
func (e *Engine) SetConnected(up bool) bool {
	next := Disconnected
	if up {
		next = Connected
	}
	if next == e.state {
		return false
	}
	e.state = next
	e.log.Info("connection state changed", "state", next)
	return true
}

// Flush sends everything queued, additions before erasures, one message
// per non-empty queue. While disconnected it does nothing. A failed send
// puts the batch back ahead of newer edits for the next flush; if the
// sender reports ErrDisconnected the engine also goes disconnected. It
// returns the number of messages sent.
func (e *Engine) Flush() int {
	if e.state != Connected || e.sender == nil || e.outbox.Empty() {
		return 0
	}
	adds := e.outbox.TakeAdditions()
	erases := e.outbox.TakeErasures()

	sent := 0
	if len(adds) > 0 {
		if !e.send(protocol.DrawData, adds) {
			e.outbox.Requeue(adds, erases)
			return sent
		}
		sent++
	}
	if len(erases) > 0 {
		if !e.send(protocol.EraseData, erases) {
			e.outbox.Requeue(nil, erases)
			return sent
		}
		sent++
	}
	return sent
}

func (e *Engine) send(typ protocol.Type, batch []state.Element) bool {
	if err := e.sender.Send(protocol.Message{Type: typ, Elements: batch}); err != nil {
		e.stats.FailedSends++
		e.log.Warn("send failed, keeping batch for later", "type", typ, "elements", len(batch), "err", err)
		if errors.Is(err, ErrDisconnected) {
			e.SetConnected(false)
		}
		return false
	}
	e.stats.SentMessages++
	e.stats.SentElements += len(batch)
	e.log.Debug("sent batch", "type", typ, "elements", len(batch))
	return true
}

// Receive buffers a draw or erase batch for the next Drain. Other message
// types are ignored. It reports whether msg was buffered.
func (e *Engine) Receive(msg protocol.Message) bool {
	if !msg.Type.Relayed() {
		return false
	}
	e.inbox = append(e.inbox, msg)
	e.stats.ReceivedMessages++
	return true
}

// Pending returns the number of buffered inbound batches.
func (e *Engine) Pending() int { return len(e.inbox) }

// Drain merges every buffered batch into the store in arrival order and
// reports whether the store changed.
func (e *Engine) Drain() bool {
	if len(e.inbox) == 0 {
		return false
	}
	changed := false
	for _, msg := range e.inbox {
		var n int
		switch msg.Type {
		case protocol.DrawData:
			n = e.store.MergeRemoteAdditions(msg.Elements)
		case protocol.EraseData:
			n = e.store.MergeRemoteErasures(msg.Elements)
		}
		if n > 0 {
			changed = true
		}
		e.log.Debug("merged batch", "type", msg.Type, "elements", len(msg.Elements), "applied", n)
	}
	clear(e.inbox)
	e.inbox = e.inbox[:0]
	return changed
}

// Stats returns the traffic counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.Dropped = e.outbox.Dropped()
	return s
}
