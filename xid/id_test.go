package xid

import (
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGenActorIDLength(t *testing.T) {
	id := GenActorID()
	require.Len(t, id, 22)
	require.False(t, IsQualified(id))
}

func TestGenMessageIDFormat(t *testing.T) {
	hiveUUID := GenHiveUUID()

	require.Equal(t, hiveUUID+":0", GenMessageID(hiveUUID, 0))
	require.Equal(t, hiveUUID+":41", GenMessageID(hiveUUID, 41))
}

func TestSplitUnqualified(t *testing.T) {
	local, hive := Split("abc123")
	require.Equal(t, "abc123", local)
	require.True(t, hive.IsNone())
}

func TestSplitQualified(t *testing.T) {
	local, hive := Split("abc@def@ghi")
	require.Equal(t, "abc", local)
	require.True(t, hive.IsSome())
	require.Equal(t, "def@ghi", hive.UnwrapOr(""))
}

func TestJoinRejectsQualifiedLocal(t *testing.T) {
	_, err := Join("abc@def", "hive1")
	require.ErrorIs(t, err, ErrAlreadyQualified)
}

func TestJoinRoundTrip(t *testing.T) {
	joined, err := Join("local1", "hive1")
	require.NoError(t, err)
	require.Equal(t, "local1@hive1", joined)

	local, hive := Split(joined)
	require.Equal(t, "local1", local)
	require.Equal(t, "hive1", hive.UnwrapOr(""))
}

func TestQualifyLeavesQualifiedAlone(t *testing.T) {
	got := Qualify(fn.Some("local1@hive1"), "hive2")
	require.Equal(t, "local1@hive1", got.UnwrapOr(""))
}

func TestQualifyLeavesAbsentAlone(t *testing.T) {
	got := Qualify(fn.None[string](), "hive2")
	require.True(t, got.IsNone())
}

func TestQualifyQualifiesBareID(t *testing.T) {
	got := Qualify(fn.Some("local1"), "hive2")
	require.Equal(t, "local1@hive2", got.UnwrapOr(""))
}

// TestSplitJoinRoundTripProperty checks spec.md's invariant:
// split(join(local, hive)) == (local, hive) for all non-qualified local.
func TestSplitJoinRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := rapid.StringMatching(`[a-zA-Z0-9_\-]{1,40}`).Draw(t, "local")
		hiveID := rapid.StringMatching(`[a-zA-Z0-9_\-@]{1,40}`).Draw(t, "hiveID")

		joined, err := Join(local, hiveID)
		require.NoError(t, err)

		gotLocal, gotHive := Split(joined)
		require.Equal(t, local, gotLocal)
		require.True(t, gotHive.IsSome())
		require.Equal(t, hiveID, gotHive.UnwrapOr(""))
	})
}

// TestMessageIDUniquenessProperty drives GenMessageID with a monotonically
// increasing counter and checks every produced ID is distinct.
func TestMessageIDUniquenessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hiveUUID := GenHiveUUID()
		n := rapid.IntRange(1, 200).Draw(t, "n")

		seen := make(map[string]struct{}, n)
		for i := 0; i < n; i++ {
			id := GenMessageID(hiveUUID, uint64(i))
			_, dup := seen[id]
			require.False(t, dup, "duplicate message ID %q", id)
			seen[id] = struct{}{}
		}
	})
}
