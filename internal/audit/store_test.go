package audit

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "xudd-audit-test-*")
	require.NoError(t, err)

	store, err := Open(filepath.Join(tmpDir, "audit.db"))
	require.NoError(t, err)

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func TestOpenAppliesMigrations(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	require.NotNil(t, store)

	_, err := store.db.Exec("SELECT 1 FROM audit_records")
	require.NoError(t, err)
}

func TestRecordEnvelope(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	wire := map[string]any{
		"id":          uuid.NewString(),
		"to":          "assistant@hiveA",
		"from_id":     "professor@hiveA",
		"directive":   "run_errand",
		"wants_reply": true,
	}

	err := store.RecordEnvelope(context.Background(), wire)
	require.NoError(t, err)

	var count int
	row := store.db.QueryRow(
		"SELECT COUNT(*) FROM audit_records WHERE message_id = ?", wire["id"],
	)
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}

func TestRecordEnvelopeNullableFields(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	wire := map[string]any{
		"id":        uuid.NewString(),
		"to":        "hive@hiveA",
		"directive": "connect_back",
	}

	err := store.RecordEnvelope(context.Background(), wire)
	require.NoError(t, err)

	var fromID, inReplyTo sql.NullString
	row := store.db.QueryRow(
		"SELECT from_id, in_reply_to FROM audit_records WHERE message_id = ?",
		wire["id"],
	)
	require.NoError(t, row.Scan(&fromID, &inReplyTo))
	require.False(t, fromID.Valid)
	require.False(t, inReplyTo.Valid)
}
