// Package envelope defines the message record routed between xudd actors:
// the seven addressing and reply-bookkeeping fields every directive
// delivery carries, plus the wire codecs used to cross a hive boundary.
package envelope

import (
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// HiveProxy is the minimal capability a Message needs to originate a reply.
// It is intentionally narrow: a Message holds this as a weak back-reference
// for Reply, not as ownership of the hive. hive.Hive satisfies a superset
// of this interface.
type HiveProxy interface {
	SendMessage(opts SendOptions) (string, error)
}

// SendOptions carries the arguments a hive proxy needs to construct and
// enqueue a new envelope. ID and FromID are options rather than bare
// strings: an absent ID tells the hive to mint a fresh one, and an absent
// FromID is kept as-is, producing a message with no sender.
type SendOptions struct {
	To         string
	Directive  string
	FromID     fn.Option[string]
	Body       any
	InReplyTo  fn.Option[string]
	ID         fn.Option[string]
	WantsReply bool
}

// Message is the envelope carried between actors. The To, Directive, and ID
// fields are set at construction and never change; Replied and
// DeferredReply are bookkeeping flags that only ever move from false to
// true.
type Message struct {
	To            string
	FromID        fn.Option[string]
	Directive     string
	ID            string
	InReplyTo     fn.Option[string]
	Body          any
	WantsReply    bool
	Replied       bool
	DeferredReply bool
	HiveProxy     HiveProxy
}

// Params holds the fields accepted by New.
type Params struct {
	To         string
	FromID     fn.Option[string]
	Directive  string
	ID         string
	InReplyTo  fn.Option[string]
	Body       any
	WantsReply bool
}

// New constructs a Message, validating that To, Directive, and ID are all
// non-empty.
func New(p Params) (*Message, error) {
	if p.To == "" {
		return nil, fmt.Errorf("%w: To", ErrMissingField)
	}
	if p.Directive == "" {
		return nil, fmt.Errorf("%w: Directive", ErrMissingField)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: ID", ErrMissingField)
	}

	return &Message{
		To:         p.To,
		FromID:     p.FromID,
		Directive:  p.Directive,
		ID:         p.ID,
		InReplyTo:  p.InReplyTo,
		Body:       p.Body,
		WantsReply: p.WantsReply,
	}, nil
}

// Reply sends an envelope with directive "reply" back to the sender with
// wants_reply=false, the common case spec.md describes for auto-reply and
// acknowledgement handlers.
func (m *Message) Reply(body any) (string, error) {
	return m.ReplyWithDirective(body, "reply", false)
}

// ReplyWithDirective sends a new message addressed to this message's
// sender, with InReplyTo set to this message's ID. It requires both an
// attached HiveProxy and a non-absent FromID; lacking either is a logic
// error surfaced as an error rather than a panic.
func (m *Message) ReplyWithDirective(
	body any, directive string, wantsReply bool) (string, error) {

	if m.HiveProxy == nil {
		return "", ErrNoHiveProxy
	}
	if m.FromID.IsNone() {
		return "", ErrNoSender
	}
	if directive == "" {
		directive = "reply"
	}

	id, err := m.HiveProxy.SendMessage(SendOptions{
		To:         m.FromID.UnwrapOr(""),
		Directive:  directive,
		FromID:     fn.Some(m.To),
		Body:       body,
		InReplyTo:  fn.Some(m.ID),
		WantsReply: wantsReply,
	})
	if err != nil {
		return "", err
	}

	m.Replied = true

	return id, nil
}

// DeferReply marks this message as having a reply that will be sent later
// by explicit handler code, disabling the hive's auto-reply rule for it.
// Once set, it is never unset.
func (m *Message) DeferReply() {
	m.DeferredReply = true
}

// NeedsReply reports whether this message still requires a reply: it asked
// for one, no reply has been deferred, and none has been sent yet.
func (m *Message) NeedsReply() bool {
	return m.WantsReply && !m.DeferredReply && !m.Replied
}
