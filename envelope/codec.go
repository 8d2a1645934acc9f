package envelope

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/lightningnetwork/lnd/fn/v2"
)

func init() {
	// Forwarded envelope bodies are transport-serialisable payloads, in
	// practice JSON-shaped maps and slices once they cross a wire
	// codec. Register the concrete types gob needs to round-trip a
	// Message.Body carrying one of those shapes.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// wireKeys are the exactly-these-keys fields of the forwarded envelope wire
// format.
const (
	keyTo         = "to"
	keyFromID     = "from_id"
	keyDirective  = "directive"
	keyID         = "id"
	keyInReplyTo  = "in_reply_to"
	keyBody       = "body"
	keyWantsReply = "wants_reply"
)

// ToWireMap projects the routing fields and Body into the stable wire
// format: to, from_id, directive, id, body, wants_reply always present;
// in_reply_to present only when set.
func (m *Message) ToWireMap() map[string]any {
	wire := map[string]any{
		keyTo:         m.To,
		keyFromID:     m.FromID.UnwrapOr(""),
		keyDirective:  m.Directive,
		keyID:         m.ID,
		keyBody:       m.Body,
		keyWantsReply: m.WantsReply,
	}

	m.InReplyTo.WhenSome(func(id string) {
		wire[keyInReplyTo] = id
	})

	return wire
}

// FromWireMap reconstructs a fresh Message from a wire map produced by
// ToWireMap (or an equivalent peer implementation). The returned Message
// always has Replied=false and DeferredReply=false: reply bookkeeping is
// never part of the wire format.
func FromWireMap(wire map[string]any) (*Message, error) {
	to, err := wireString(wire, keyTo, true)
	if err != nil {
		return nil, err
	}

	directive, err := wireString(wire, keyDirective, true)
	if err != nil {
		return nil, err
	}

	id, err := wireString(wire, keyID, true)
	if err != nil {
		return nil, err
	}

	fromID, err := wireString(wire, keyFromID, false)
	if err != nil {
		return nil, err
	}

	inReplyTo, err := wireString(wire, keyInReplyTo, false)
	if err != nil {
		return nil, err
	}

	wantsReply, _ := wire[keyWantsReply].(bool)

	msg := &Message{
		To:         to,
		Directive:  directive,
		ID:         id,
		Body:       wire[keyBody],
		WantsReply: wantsReply,
	}
	if fromID != "" {
		msg.FromID = fn.Some(fromID)
	}
	if inReplyTo != "" {
		msg.InReplyTo = fn.Some(inReplyTo)
	}

	return msg, nil
}

// wireString extracts a string field from a decoded wire map, returning an
// error if required and absent or of the wrong type.
func wireString(wire map[string]any, key string, required bool) (string, error) {
	v, ok := wire[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf(
				"envelope: wire map missing field %q", key,
			)
		}
		return "", nil
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf(
			"envelope: wire map field %q is not a string", key,
		)
	}

	return s, nil
}

// gobFrame is the concrete, gob-friendly shape a Message is flattened into
// for the binary codec (EncodeGob/DecodeGob). The bridge transports do not
// use this codec; they frame envelopes as JSON wire maps.
type gobFrame struct {
	To         string
	FromID     string
	HasFromID  bool
	Directive  string
	ID         string
	InReplyTo  string
	HasInReply bool
	Body       any
	WantsReply bool
}

// EncodeGob writes m to w using the binary gob codec.
func EncodeGob(w io.Writer, m *Message) error {
	frame := gobFrame{
		To:         m.To,
		Directive:  m.Directive,
		ID:         m.ID,
		Body:       m.Body,
		WantsReply: m.WantsReply,
	}

	m.FromID.WhenSome(func(id string) {
		frame.FromID = id
		frame.HasFromID = true
	})
	m.InReplyTo.WhenSome(func(id string) {
		frame.InReplyTo = id
		frame.HasInReply = true
	})

	return gob.NewEncoder(w).Encode(frame)
}

// DecodeGob reads a single gob-encoded frame from r and reconstructs a
// fresh Message, with Replied=false and DeferredReply=false as FromWireMap
// does.
func DecodeGob(r io.Reader) (*Message, error) {
	var frame gobFrame
	if err := gob.NewDecoder(r).Decode(&frame); err != nil {
		return nil, fmt.Errorf("envelope: gob decode failed: %w", err)
	}

	msg := &Message{
		To:         frame.To,
		Directive:  frame.Directive,
		ID:         frame.ID,
		Body:       frame.Body,
		WantsReply: frame.WantsReply,
	}
	if frame.HasFromID {
		msg.FromID = fn.Some(frame.FromID)
	}
	if frame.HasInReply {
		msg.InReplyTo = fn.Some(frame.InReplyTo)
	}

	return msg, nil
}
