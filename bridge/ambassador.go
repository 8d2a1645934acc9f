package bridge

import (
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/hive"
	"github.com/xudd/xudd/xid"
)

// Ambassador is the send-only half of one end of a bridge: a directive
// handler that turns forward_message envelopes its owning hive routes to it
// into frames written across a Transport. The receive half — reading frames
// back off that same Transport — is a separate, single-owner loop started
// once per transport endpoint by SetupAmbassador or NewPeerHive, whichever
// claims that endpoint first; an Ambassador never starts one itself, since
// by the time a passive side creates one (from connect_back) its transport
// endpoint is typically already being drained.
type Ambassador struct {
	transport  Transport
	peerHiveID string
}

// NewAmbassadorCtor returns an ActorCtor that builds an Ambassador's
// forward_message handler, bridging to peerHiveID over transport.
func NewAmbassadorCtor(transport Transport, peerHiveID string) hive.ActorCtor {
	return func(h hive.HiveProxy, id string, args map[string]any) (*actor.Actor, error) {
		local, _ := xid.Split(id)
		a := actor.New(id, local, h)

		amb := &Ambassador{transport: transport, peerHiveID: peerHiveID}
		a.Register("forward_message", amb.handleForwardMessage)

		return a, nil
	}
}

// handleForwardMessage backs the forward_message directive the owning hive
// sends whenever dispatch resolves an envelope to this ambassador's peer
// hive: m.Body already holds the inner envelope's wire map, built by
// Message.ToWireMap, so it is sent across the transport unchanged.
func (amb *Ambassador) handleForwardMessage(
	m *envelope.Message) (actor.Continuation, error) {

	wire, ok := m.Body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf(
			"forward_message: body is not an envelope wire map (peer %s)",
			amb.peerHiveID)
	}

	frame, err := jsonMarshalWire(wire)
	if err != nil {
		return nil, err
	}

	if err := amb.transport.Send(context.Background(), frame); err != nil {
		return nil, fmt.Errorf(
			"forward_message: transport send to %s: %w",
			amb.peerHiveID, err)
	}

	return nil, nil
}

// startReceiveLoop drains transport and re-injects each frame as a freshly
// enqueued envelope on h, the event-driven Go analogue of xudd's periodic
// check_message_loop poll: rather than a self-rescheduled directive waking
// up to check for new data, a dedicated goroutine blocks on the transport's
// channel and calls SendMessage as soon as a frame arrives. SendMessage only
// ever pushes onto the hive's queue, so this goroutine never touches the
// hive's registry directly. The returned func cancels the loop.
func startReceiveLoop(
	h hive.HiveProxy, transport Transport, label string) context.CancelFunc {

	ctx, cancel := context.WithCancel(context.Background())
	dataCh, errCh := transport.Recv(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return

			case frame, ok := <-dataCh:
				if !ok {
					return
				}

				msg, err := decodeFrame(frame)
				if err != nil {
					log.ErrorS(ctx, "failed to decode bridge frame", err,
						"peer", label)
					continue
				}

				if _, err := h.SendMessage(envelope.SendOptions{
					To:         msg.To,
					Directive:  msg.Directive,
					FromID:     msg.FromID,
					Body:       msg.Body,
					InReplyTo:  msg.InReplyTo,
					ID:         fn.Some(msg.ID),
					WantsReply: msg.WantsReply,
				}); err != nil {
					log.ErrorS(ctx, "failed to re-inject bridged message", err,
						"peer", label)
				}

			case err, ok := <-errCh:
				if !ok {
					return
				}
				log.WarnS(ctx, "bridge transport error", err, "peer", label)
				return
			}
		}
	}()

	return cancel
}

// SetupAmbassador runs the setup sequence for bridging local to a peer hive
// already reachable over transport: it starts draining transport into
// local, creates the ambassador actor that sends the other way, registers
// it for peerHiveID, and sends connect_back across the wire so the peer
// symmetrically registers its own ambassador for local. It assumes the peer
// end of transport is already wired to a *PeerHive (see NewPeerHive), whose
// connect_back handler answers this.
func SetupAmbassador(
	local *hive.Hive, peerHiveID string, transport Transport) (string, error) {

	startReceiveLoop(local, transport, peerHiveID)

	ambassadorID, err := local.CreateActor(
		NewAmbassadorCtor(transport, peerHiveID), "")
	if err != nil {
		return "", fmt.Errorf("bridge: create ambassador: %w", err)
	}

	selfID, _ := xid.Join(xid.HiveLocalID, local.HiveID())

	if _, err := local.SendMessage(envelope.SendOptions{
		To:        selfID,
		Directive: "register_ambassador",
		FromID:    fn.Some(ambassadorID),
		Body:      map[string]any{"hive_id": peerHiveID},
	}); err != nil {
		return "", fmt.Errorf("bridge: register_ambassador: %w", err)
	}

	peerSelfID, _ := xid.Join(xid.HiveLocalID, peerHiveID)

	if _, err := local.SendMessage(envelope.SendOptions{
		To:        peerSelfID,
		Directive: "connect_back",
		FromID:    fn.Some(ambassadorID),
		Body:      map[string]any{"hive_id": local.HiveID()},
	}); err != nil {
		return "", fmt.Errorf("bridge: connect_back: %w", err)
	}

	return ambassadorID, nil
}

// makeConnectBackHandler builds the connect_back handler a PeerHive
// registers on its own hive-as-actor identity: on receipt, it creates its
// own ambassador pointed back at the caller over the same transport (whose
// receive side is already being drained by NewPeerHive) and registers it,
// completing the symmetric bridge setup.
func makeConnectBackHandler(h *hive.Hive, transport Transport) actor.Handler {
	return func(m *envelope.Message) (actor.Continuation, error) {
		body, _ := m.Body.(map[string]any)
		callerHiveID, _ := body["hive_id"].(string)
		if callerHiveID == "" {
			return nil, fmt.Errorf("connect_back: missing hive_id")
		}

		ambassadorID, err := h.CreateActor(
			NewAmbassadorCtor(transport, callerHiveID), "")
		if err != nil {
			return nil, fmt.Errorf("connect_back: create ambassador: %w", err)
		}

		selfID, _ := xid.Join(xid.HiveLocalID, h.HiveID())

		_, err = h.SendMessage(envelope.SendOptions{
			To:        selfID,
			Directive: "register_ambassador",
			FromID:    fn.Some(ambassadorID),
			Body:      map[string]any{"hive_id": callerHiveID},
		})
		return nil, err
	}
}

// PeerHive wraps a hive with the bridge-specific directives it needs in
// order to be the passive end of a SetupAmbassador call and to honor the
// two-step remote shutdown protocol. Constructing one immediately starts
// draining transport, since a passive peer must be able to receive
// connect_back before it has created any ambassador of its own.
type PeerHive struct {
	Hive *hive.Hive
}

// NewPeerHive registers connect_back, remote_shutdown, and
// remote_shutdown_step2 on h's hive-as-actor identity, starts draining
// transport into h, and returns the wrapper. h is otherwise used exactly
// like a plain *hive.Hive.
func NewPeerHive(h *hive.Hive, transport Transport) *PeerHive {
	startReceiveLoop(h, transport, h.HiveID())

	h.RegisterSelfDirective("connect_back", makeConnectBackHandler(h, transport))

	h.RegisterSelfDirective("remote_shutdown",
		func(m *envelope.Message) (actor.Continuation, error) {
			// The handler itself does nothing: the auto-reply this
			// message's wants_reply triggers is what actually
			// acknowledges the request, and it must go out over the
			// wire before the hive stops accepting new dispatch work.
			// Only the step2 message, sent by the initiator once that
			// acknowledgement has been received, actually stops the
			// loop.
			return nil, nil
		})

	h.RegisterSelfDirective("remote_shutdown_step2",
		func(m *envelope.Message) (actor.Continuation, error) {
			h.SendShutdown()
			return nil, nil
		})

	return &PeerHive{Hive: h}
}

// ShutdownPeerDirective is the directive name a control actor registers
// ShutdownPeerHandler under to drive the two-step remote shutdown protocol.
const ShutdownPeerDirective = "shutdown_peer"

// ShutdownPeerHandler backs a directive, registered on any actor a, that
// drives the two-step remote shutdown protocol against the hive named by
// the triggering message's body["peer_hive_id"]: it sends remote_shutdown
// and waits for the acknowledgement before sending remote_shutdown_step2,
// so the peer's acknowledgement is guaranteed to have gone out over the
// wire before its dispatch loop stops.
func ShutdownPeerHandler(a *actor.Actor) actor.Handler {
	return func(m *envelope.Message) (actor.Continuation, error) {
		body, _ := m.Body.(map[string]any)
		peerHiveID, _ := body["peer_hive_id"].(string)
		if peerHiveID == "" {
			return nil, fmt.Errorf("shutdown_peer: missing peer_hive_id")
		}

		target, err := xid.Join(xid.HiveLocalID, peerHiveID)
		if err != nil {
			return nil, err
		}

		return actor.NewStepContinuation(
			func(_ *envelope.Message) (string, error) {
				return a.WaitOnMessage(target, "remote_shutdown", nil)
			},
			func(_ *envelope.Message) (string, error) {
				_, err := a.Send(target, "remote_shutdown_step2", nil)
				return "", err
			},
		), nil
	}
}
