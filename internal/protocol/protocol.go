// Package protocol defines the messages exchanged between boards and the
// relay. Every frame is a JSON envelope {"type": ..., "data": ...}.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"LiveBoard/internal/state"
)

// Type names a message kind.
type Type string

const (
	// DrawData carries newly finished strokes.
	DrawData Type = "draw-data"
	// EraseData carries the pre-erasure copies of erased strokes.
	EraseData Type = "erase-data"
	// Hello is sent by the relay to a peer right after it connects.
	Hello Type = "hello"
	// HostChanged is broadcast by the relay when the host peer changes.
	HostChanged Type = "host"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMalformed   = errors.New("malformed message")
)

// Relayed reports whether the relay forwards messages of type t between
// peers.
func (t Type) Relayed() bool {
	return t == DrawData || t == EraseData
}

// Message is a decoded frame. Elements is set for draw and erase data;
// Peer and Host for relay notices.
type Message struct {
	Type     Type
	Elements []state.Element
	Peer     string
	Host     string
}

type envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

type notice struct {
	Peer string `json:"peer,omitempty"`
	Host string `json:"host"`
}

// Encode serialises msg into a frame.
func Encode(msg Message) ([]byte, error) {
	var data any
	switch msg.Type {
	case DrawData, EraseData:
		els := msg.Elements
		if els == nil {
			els = []state.Element{}
		}
		data = els
	case Hello, HostChanged:
		data = notice{Peer: msg.Peer, Host: msg.Host}
	default:
		return nil, fmt.Errorf("encode %q: %w", msg.Type, ErrUnknownType)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", msg.Type, err)
	}
	return json.Marshal(envelope{Type: msg.Type, Data: raw})
}

// Decode parses a frame. Draw and erase data must be JSON arrays.
func Decode(frame []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg := Message{Type: env.Type}
	switch env.Type {
	case DrawData, EraseData:
		if err := json.Unmarshal(env.Data, &msg.Elements); err != nil {
			return Message{}, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
		}
		if msg.Elements == nil {
			return Message{}, fmt.Errorf("%w: %s payload is not an array", ErrMalformed, env.Type)
		}
	case Hello, HostChanged:
		var n notice
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return Message{}, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
		}
		msg.Peer, msg.Host = n.Peer, n.Host
	default:
		return Message{}, fmt.Errorf("decode %q: %w", env.Type, ErrUnknownType)
	}
	return msg, nil
}

// PeekType reads only the type of a frame. The relay uses it to decide
// whether to forward a frame without decoding its payload.
func PeekType(frame []byte) (Type, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(frame, &head); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return head.Type, nil
}
