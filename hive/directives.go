package hive

import (
	"context"
	"fmt"

	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/xid"
)

// handleCreateActorDirective backs the wire-triggered create_actor
// directive: a remote hive causes actor construction here by sending this
// directive to hive@<this hive>, typically via an ambassador. body must
// carry "class" naming a constructor previously registered with
// RegisterActorClass; "id" and "args" are optional.
func (h *Hive) handleCreateActorDirective(
	m *envelope.Message) (actor.Continuation, error) {

	body, _ := m.Body.(map[string]any)

	className, _ := body["class"].(string)
	ctor, ok := h.ctorRegistry[className]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActorClass, className)
	}

	id, _ := body["id"].(string)
	args, _ := body["args"].(map[string]any)

	actorID, err := h.createActor(ctor, id, args)
	if err != nil {
		return nil, err
	}

	if _, err := m.Reply(map[string]any{"actor_id": actorID}); err != nil {
		log.ErrorS(context.Background(),
			"failed to reply to create_actor", err,
			"actor_id", actorID)
	}

	return nil, nil
}

// handleRegisterAmbassador backs the register_ambassador directive. Only a
// locally-owned actor may register itself as the ambassador for a remote
// hive_id.
func (h *Hive) handleRegisterAmbassador(
	m *envelope.Message) (actor.Continuation, error) {

	body, _ := m.Body.(map[string]any)
	remoteHiveID, _ := body["hive_id"].(string)
	if remoteHiveID == "" {
		return nil, fmt.Errorf("register_ambassador: missing hive_id")
	}

	if m.FromID.IsNone() {
		return nil, ErrSenderNotLocal
	}

	_, senderHive := xid.Split(m.FromID.UnwrapOr(""))
	if senderHive.IsSome() && senderHive.UnwrapOr("") != h.hiveID {
		return nil, ErrSenderNotLocal
	}

	h.ambassadors[remoteHiveID] = m.FromID.UnwrapOr("")

	return nil, nil
}

// handleUnregisterAmbassador backs the unregister_ambassador directive. The
// caller must match the actor currently registered as that peer's
// ambassador.
func (h *Hive) handleUnregisterAmbassador(
	m *envelope.Message) (actor.Continuation, error) {

	body, _ := m.Body.(map[string]any)
	remoteHiveID, _ := body["hive_id"].(string)

	current, ok := h.ambassadors[remoteHiveID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchActor, remoteHiveID)
	}
	if m.FromID.UnwrapOr("") != current {
		return nil, ErrAmbassadorMismatch
	}

	delete(h.ambassadors, remoteHiveID)

	return nil, nil
}
