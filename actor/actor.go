// Package actor implements the per-actor directive routing table and
// continuation bookkeeping that the hive drives one envelope at a time: a
// handler invocation per delivered message, and the inspection of a
// handler's return value (nothing, or a suspended continuation awaiting a
// message ID) that advances a continuation on the matching reply. External
// futures are awaited through WaitOnFuture, which turns the future's result
// into a self-addressed reply message.
package actor

import (
	"context"
	"fmt"
	"sort"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xudd/xudd/envelope"
)

// HiveProxy is the capability an Actor needs from its owning hive: enough
// to send messages, mint message IDs, and learn the local hive's ID. It is
// a superset of envelope.HiveProxy (which only needs SendMessage to drive
// Message.Reply).
type HiveProxy interface {
	envelope.HiveProxy
	GenMessageID() string
	HiveID() string
}

// Handler is a directive handler. It may return a nil Continuation to
// signal it ran to completion without suspending, or a non-nil one to
// suspend on an await point.
type Handler func(m *envelope.Message) (Continuation, error)

// Actor holds one actor's directive routing table and the table of
// continuations suspended on a reply, keyed by the message ID each is
// awaiting.
type Actor struct {
	id      string
	localID string
	hive    HiveProxy

	routing map[string]Handler
	waiting map[string]Continuation
}

// New constructs an Actor with the given fully-qualified id, local-ID, and
// owning hive capability. Its routing table starts empty; call Register to
// add directive handlers.
func New(id, localID string, hive HiveProxy) *Actor {
	return &Actor{
		id:      id,
		localID: localID,
		hive:    hive,
		routing: make(map[string]Handler),
		waiting: make(map[string]Continuation),
	}
}

// ID returns the actor's fully-qualified ID.
func (a *Actor) ID() string { return a.id }

// LocalID returns the actor's unqualified local ID.
func (a *Actor) LocalID() string { return a.localID }

// Register adds a handler for directive, overwriting any existing entry.
func (a *Actor) Register(directive string, h Handler) {
	a.routing[directive] = h
}

// NumWaiting reports the number of continuations currently suspended on a
// reply. It exists chiefly so tests can assert spec.md's invariant that
// this count always equals the number of outstanding wants_reply messages
// the actor has sent.
func (a *Actor) NumWaiting() int {
	return len(a.waiting)
}

// Directives returns the sorted list of directives this actor has a
// handler registered for. Purely introspective, used by internal/docs to
// render a hive's directive table; never consulted by Deliver.
func (a *Actor) Directives() []string {
	directives := make([]string, 0, len(a.routing))
	for d := range a.routing {
		directives = append(directives, d)
	}
	sort.Strings(directives)
	return directives
}

// Deliver runs the canonical four-step delivery algorithm for a single
// envelope m. The caller (the hive) is expected to have already attached
// m.HiveProxy. Deliver never panics: a recovered handler panic is reported
// as an error and does not stop the caller's dispatch loop.
func (a *Actor) Deliver(m *envelope.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorS(context.Background(),
				"recovered panic in actor handler",
				fmt.Errorf("%w: %v", ErrHandlerFault, r),
				"actor", a.id, "directive", m.Directive,
				"message_id", m.ID,
			)
			err = fmt.Errorf("%w: %v", ErrHandlerFault, r)
		}
		// Auto-reply fires after steps 1-3 complete, successfully or
		// not, as long as the envelope still needs one.
		a.autoReply(m)
	}()

	if m.InReplyTo.IsSome() {
		key := m.InReplyTo.UnwrapOr("")
		if cont, found := a.waiting[key]; found {
			delete(a.waiting, key)
			return a.drive(cont, m)
		}
	}

	handler, ok := a.routing[m.Directive]
	if !ok {
		log.ErrorS(context.Background(),
			"unregistered directive",
			ErrUnregisteredDirective,
			"actor", a.id, "directive", m.Directive,
		)
		return nil
	}

	cont, herr := handler(m)
	if herr != nil {
		log.ErrorS(context.Background(),
			"handler returned error", herr,
			"actor", a.id, "directive", m.Directive,
		)
		return herr
	}
	if cont == nil {
		return nil
	}

	return a.drive(cont, nil)
}

// drive advances cont with resume, storing it back into the waiting table
// if it suspends again, or discarding it if it completes or errors.
func (a *Actor) drive(cont Continuation, resume *envelope.Message) error {
	awaiting, done, err := cont.Resume(resume)
	if err != nil {
		log.ErrorS(context.Background(),
			"continuation returned error", err,
			"actor", a.id,
		)
		return err
	}
	if done || awaiting == "" {
		return nil
	}

	a.waiting[awaiting] = cont

	return nil
}

// autoReply implements spec.md's auto-reply rule: if m still needs a reply
// after delivery, the hive answers on the actor's behalf with an empty
// "reply" envelope.
func (a *Actor) autoReply(m *envelope.Message) {
	if !m.NeedsReply() {
		return
	}

	if _, err := m.Reply(nil); err != nil {
		log.ErrorS(context.Background(),
			"auto-reply failed", err,
			"actor", a.id, "message_id", m.ID,
		)
	}
}

// WaitOnMessage sends directive to an actor with wants_reply=true and
// returns the new message's ID: the handler should return this as its
// continuation's awaited ID to suspend until the reply arrives.
func (a *Actor) WaitOnMessage(to, directive string, body any) (string, error) {
	return a.hive.SendMessage(envelope.SendOptions{
		To:         to,
		Directive:  directive,
		FromID:     fn.Some(a.id),
		Body:       body,
		WantsReply: true,
	})
}

// Send fires a one-way message to another actor, with wants_reply=false.
// It is the non-suspending counterpart to WaitOnMessage, for handlers that
// notify a peer without waiting on anything back.
func (a *Actor) Send(to, directive string, body any) (string, error) {
	return a.hive.SendMessage(envelope.SendOptions{
		To:        to,
		Directive: directive,
		FromID:    fn.Some(a.id),
		Body:      body,
	})
}

// WaitOnSelf schedules a low-cost self-reschedule: a message this actor
// sends to itself, whose reply is itself (to == from_id == this actor's
// ID, in_reply_to == id). Because it carries wants_reply=false, auto-reply
// never fires for it.
func (a *Actor) WaitOnSelf() (string, error) {
	id := a.hive.GenMessageID()

	_, err := a.hive.SendMessage(envelope.SendOptions{
		To:        a.id,
		Directive: "self_reply",
		FromID:    fn.Some(a.id),
		InReplyTo: fn.Some(id),
		ID:        fn.Some(id),
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// WaitOnFuture is the narrow, concrete shape the optional external-future
// await path takes in this runtime: register is called with a callback the
// caller should invoke exactly once, when its asynchronous work completes.
// That callback delivers a self-addressed "future_reply" message carrying
// the result, which resumes the continuation through the normal
// InReplyTo-matching path. If register's callback is never invoked, the
// continuation simply never resumes; that is a caller error, not a runtime
// fault, since the core provides no timeouts on awaits.
func (a *Actor) WaitOnFuture(register func(func(fn.Result[any]))) (string, error) {
	id := a.hive.GenMessageID()

	register(func(result fn.Result[any]) {
		val, resErr := result.Unpack()

		body := map[string]any{}
		if resErr != nil {
			body["error"] = resErr.Error()
		} else {
			body["value"] = val
		}

		_, _ = a.hive.SendMessage(envelope.SendOptions{
			To:        a.id,
			Directive: "future_reply",
			FromID:    fn.Some(a.id),
			InReplyTo: fn.Some(id),
			ID:        fn.Some(id),
			Body:      body,
		})
	})

	return id, nil
}
