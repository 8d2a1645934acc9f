package audit

import (
	"context"

	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/hive"
)

// NewSinkCtor returns an ActorCtor for an actor whose only job is to
// persist every audit_record directive it receives into store. Wire a
// hive to it with hive.Hive.SetAuditSink after creating the actor.
func NewSinkCtor(store *Store) hive.ActorCtor {
	return func(h hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {
		a := actor.New(id, "audit-sink", h)
		a.Register("audit_record", makeRecordHandler(store))
		return a, nil
	}
}

func makeRecordHandler(store *Store) actor.Handler {
	return func(m *envelope.Message) (actor.Continuation, error) {
		wire, ok := m.Body.(map[string]any)
		if !ok {
			log.WarnS(context.Background(),
				"audit_record body is not an envelope wire map", nil)
			return nil, nil
		}

		if err := store.RecordEnvelope(context.Background(), wire); err != nil {
			log.ErrorS(context.Background(), "failed to persist audit record",
				err)
		}

		return nil, nil
	}
}
