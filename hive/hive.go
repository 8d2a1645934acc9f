// Package hive implements the message-routing scheduler that owns an
// actor registry and a FIFO dispatch queue, routing each envelope to a
// local actor or to the ambassador registered for a remote hive. The hive
// is itself registered in its own registry under the reserved local-ID
// "hive", reusing the actor delivery algorithm for its own directives
// rather than running a second dispatch path.
package hive

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/xid"
)

// ActorCtor constructs an actor once the hive has reserved its
// fully-qualified id. args carries the directive-driven create_actor
// payload's "args" field for wire-triggered construction, and is nil for
// direct, in-process CreateActor calls that don't need it.
type ActorCtor func(h HiveProxy, id string, args map[string]any) (*actor.Actor, error)

// HiveProxy is the interface actors and the demo/CLI layer consume. *Hive
// satisfies it.
type HiveProxy interface {
	envelope.HiveProxy
	GenMessageID() string
	HiveID() string
	CreateActor(ctor ActorCtor, id string) (string, error)
	RemoveActor(id string) error
	SendShutdown()
}

// Hive is a single-threaded dispatcher owning a set of actors and a FIFO
// message queue.
type Hive struct {
	hiveID   string
	hiveUUID string
	counter  *counterBox

	registry     map[string]*actor.Actor
	ambassadors  map[string]string
	ctorRegistry map[string]ActorCtor

	self *actor.Actor

	queue     *queue
	state     stateBox
	stopCh    chan struct{}
	stopped   sync.Once
	auditSink string
}

// New constructs a hive. If hiveID is empty, a fresh one is generated.
func New(hiveID string) *Hive {
	if hiveID == "" {
		hiveID = xid.GenHiveUUID()
	}

	h := &Hive{
		hiveID:       hiveID,
		hiveUUID:     xid.GenHiveUUID(),
		counter:      &counterBox{},
		registry:     make(map[string]*actor.Actor),
		ambassadors:  make(map[string]string),
		ctorRegistry: make(map[string]ActorCtor),
		queue:        newQueue(256),
		stopCh:       make(chan struct{}),
	}

	selfID, _ := xid.Join(xid.HiveLocalID, h.hiveID)
	h.self = actor.New(selfID, xid.HiveLocalID, h)
	h.self.Register("create_actor", h.handleCreateActorDirective)
	h.self.Register("register_ambassador", h.handleRegisterAmbassador)
	h.self.Register("unregister_ambassador", h.handleUnregisterAmbassador)
	h.registry[xid.HiveLocalID] = h.self

	return h
}

// HiveID returns this hive's ID.
func (h *Hive) HiveID() string { return h.hiveID }

// RegisterActorClass makes ctor reachable by name from the wire-driven
// create_actor directive, the path a remote hive uses to cause actor
// construction here via its ambassador.
func (h *Hive) RegisterActorClass(name string, ctor ActorCtor) {
	h.ctorRegistry[name] = ctor
}

// GenMessageID mints the next message ID in this hive's sequence.
func (h *Hive) GenMessageID() string {
	return xid.GenMessageID(h.hiveUUID, h.counter.next())
}

// RegisterSelfDirective adds a handler to the hive's own actor identity
// (local-ID "hive"), alongside the three built-in directives registered by
// New. It exists for ambient extensions, chiefly the inter-hive bridge,
// that need the hive itself to answer additional protocol directives
// without the bridge package reaching into Hive's internals.
func (h *Hive) RegisterSelfDirective(directive string, handler actor.Handler) {
	h.self.Register(directive, handler)
}

// SendMessage constructs an envelope from opts, minting a fresh ID if
// opts.ID is absent and binding opts.FromID as-is (a nil FromID means "no
// sender", matching spec.md's treatment of runtime-produced messages), then
// enqueues it for dispatch.
func (h *Hive) SendMessage(opts envelope.SendOptions) (string, error) {
	id := opts.ID.UnwrapOr("")
	if id == "" {
		id = h.GenMessageID()
	}

	to := xid.Qualify(fn.Some(opts.To), h.hiveID).UnwrapOr(opts.To)

	msg, err := envelope.New(envelope.Params{
		To:         to,
		FromID:     opts.FromID,
		Directive:  opts.Directive,
		ID:         id,
		InReplyTo:  opts.InReplyTo,
		Body:       opts.Body,
		WantsReply: opts.WantsReply,
	})
	if err != nil {
		return "", err
	}

	h.queue.push(msg)

	return id, nil
}

// CreateActor instantiates ctor under a fresh or caller-supplied local-ID
// and registers it, rejecting collisions and the reserved "hive" ID.
func (h *Hive) CreateActor(ctor ActorCtor, id string) (string, error) {
	return h.createActor(ctor, id, nil)
}

func (h *Hive) createActor(
	ctor ActorCtor, local string, args map[string]any) (string, error) {

	if local == "" {
		local = xid.GenActorID()
	}
	if local == xid.HiveLocalID {
		return "", ErrReservedID
	}
	if _, exists := h.registry[local]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateActor, local)
	}

	qualifiedID, err := xid.Join(local, h.hiveID)
	if err != nil {
		return "", err
	}

	act, err := ctor(h, qualifiedID, args)
	if err != nil {
		return "", err
	}

	h.registry[local] = act

	return qualifiedID, nil
}

// RemoveActor removes the actor named by id, which may be qualified or
// bare, from the registry.
func (h *Hive) RemoveActor(id string) error {
	local, hiveOpt := xid.Split(id)
	if hiveOpt.IsSome() && hiveOpt.UnwrapOr("") != h.hiveID {
		return fmt.Errorf("%w: %s", ErrNoSuchActor, id)
	}
	if _, ok := h.registry[local]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchActor, id)
	}

	delete(h.registry, local)

	return nil
}

// SendShutdown requests the dispatch loop stop after the envelope it
// currently has in hand; it does not drain the remaining queue.
func (h *Hive) SendShutdown() {
	if h.state.get() == StateStopped {
		return
	}

	h.state.set(StateStopping)
	h.stopped.Do(func() { close(h.stopCh) })
}

// State reports the hive's current lifecycle state.
func (h *Hive) State() State { return h.state.get() }

// DirectiveTable returns, for every actor currently registered (including
// the hive's own self actor, under its qualified "hive@<id>" identity),
// the sorted list of directives it handles. Purely introspective, for
// internal/docs; not safe to call concurrently with CreateActor/RemoveActor
// once Run has started, same as the rest of the registry-mutating API.
func (h *Hive) DirectiveTable() map[string][]string {
	table := make(map[string][]string, len(h.registry))
	for local, a := range h.registry {
		qualifiedID, err := xid.Join(local, h.hiveID)
		if err != nil {
			continue
		}
		table[qualifiedID] = a.Directives()
	}
	return table
}

// Run enters the dispatch loop. It returns when SendShutdown is called,
// ctx is cancelled, or SIGINT/SIGTERM is received. Queued envelopes are not
// drained on exit: the loop stops popping once Stopping is observed, after
// finishing whatever envelope it has already popped.
func (h *Hive) Run(ctx context.Context) error {
	h.state.set(StateRunning)
	defer h.state.set(StateStopped)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		if h.state.get() != StateRunning {
			return nil
		}

		if m, ok := h.queue.pop(); ok {
			h.dispatch(m)
			continue
		}

		select {
		case <-ctx.Done():
			h.SendShutdown()

		case <-sigCh:
			log.InfoS(ctx, "signal received, shutting down hive",
				"hive_id", h.hiveID)
			h.SendShutdown()

		case <-h.queue.wake:

		case <-h.stopCh:
		}
	}
}

// dispatch implements spec.md's per-envelope dispatch algorithm: resolve
// to's hive, route locally or via the registered ambassador, and never let
// a handler fault escape to the caller.
func (h *Hive) dispatch(m *envelope.Message) {
	local, hiveOpt := xid.Split(m.To)
	targetHive := hiveOpt.UnwrapOr(h.hiveID)

	if targetHive == h.hiveID {
		h.dispatchLocal(local, m)
	} else {
		h.dispatchRemote(targetHive, m)
	}

	h.recordAudit(m)
}

// SetAuditSink designates actorID, the qualified ID returned by the
// CreateActor call that built it, to receive a fire-and-forget audit_record
// copy of every envelope this hive dispatches from here on, except
// envelopes addressed to the sink itself. Passing "" disables auditing.
func (h *Hive) SetAuditSink(actorID string) {
	h.auditSink = actorID
}

// recordAudit enqueues an audit_record copy of m for the configured audit
// sink, if any. It is fire-and-forget: the copy is never part of m's own
// reply path, and a failure to enqueue it is only logged.
func (h *Hive) recordAudit(m *envelope.Message) {
	if h.auditSink == "" || m.To == h.auditSink {
		return
	}

	if _, err := h.SendMessage(envelope.SendOptions{
		To:        h.auditSink,
		Directive: "audit_record",
		Body:      m.ToWireMap(),
	}); err != nil {
		log.ErrorS(context.Background(),
			"failed to enqueue audit record", err, "sink", h.auditSink)
	}
}

func (h *Hive) dispatchLocal(local string, m *envelope.Message) {
	act, ok := h.registry[local]
	if !ok {
		h.handleNoSuchActor(m)
		return
	}

	m.HiveProxy = h

	if err := act.Deliver(m); err != nil {
		log.ErrorS(context.Background(),
			"actor delivery returned error", err,
			"actor", act.ID(), "directive", m.Directive,
		)
	}
}

func (h *Hive) dispatchRemote(targetHive string, m *envelope.Message) {
	ambassadorID, ok := h.ambassadors[targetHive]
	if !ok {
		h.handleNoSuchActor(m)
		return
	}

	ambLocal, _ := xid.Split(ambassadorID)
	selfQualified, _ := xid.Join(xid.HiveLocalID, h.hiveID)

	fwd, err := envelope.New(envelope.Params{
		To:        ambassadorID,
		FromID:    fn.Some(selfQualified),
		Directive: "forward_message",
		ID:        h.GenMessageID(),
		Body:      m.ToWireMap(),
	})
	if err != nil {
		log.ErrorS(context.Background(),
			"failed to build forward_message envelope", err,
			"target_hive", targetHive,
		)
		return
	}

	h.dispatchLocal(ambLocal, fwd)
}

// handleNoSuchActor implements spec.md's routing-failure treatment: reply
// with error.no_such_actor when the sender asked for a reply and isn't the
// envelope's own target, otherwise drop with a warning log. The reply is
// itself routed through SendMessage/dispatch, so it travels the ambassador
// path automatically when the original sender is remote.
func (h *Hive) handleNoSuchActor(m *envelope.Message) {
	log.WarnS(context.Background(), "no such actor", ErrNoSuchActor,
		"to", m.To, "directive", m.Directive)

	if !m.WantsReply {
		return
	}
	if m.FromID.IsNone() {
		return
	}
	if m.FromID.UnwrapOr("") == m.To {
		return
	}

	_, err := h.SendMessage(envelope.SendOptions{
		To:        m.FromID.UnwrapOr(""),
		Directive: "error.no_such_actor",
		FromID:    fn.Some(m.To),
		Body:      map[string]any{"to": m.To},
		InReplyTo: fn.Some(m.ID),
	})
	if err != nil {
		log.ErrorS(context.Background(),
			"failed to send error.no_such_actor reply", err,
			"to", m.To)
	}
}
