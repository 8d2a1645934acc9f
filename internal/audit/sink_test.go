package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/hive"
)

func TestSinkPersistsDispatchedMessages(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "xudd-audit-sink-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	store, err := Open(filepath.Join(tmpDir, "audit.db"))
	require.NoError(t, err)
	defer store.Close()

	h := hive.New("hiveA")

	sinkID, err := h.CreateActor(NewSinkCtor(store), "audit-sink")
	require.NoError(t, err)
	h.SetAuditSink(sinkID)

	targetID, err := h.CreateActor(func(
		hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

		a := actor.New(id, "target", hp)
		a.Register("ping", func(
			_ *envelope.Message) (actor.Continuation, error) {

			return nil, nil
		})
		return a, nil
	}, "target")
	require.NoError(t, err)

	_, err = h.SendMessage(envelope.SendOptions{
		To:        targetID,
		Directive: "ping",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, h.Run(ctx))

	var count int
	row := store.db.QueryRow(
		`SELECT COUNT(*) FROM audit_records WHERE directive = 'ping'`,
	)
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}
