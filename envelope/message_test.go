package envelope

import (
	"bytes"
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewValidatesRequiredFields(t *testing.T) {
	_, err := New(Params{Directive: "ping", ID: "id1"})
	require.ErrorIs(t, err, ErrMissingField)

	_, err = New(Params{To: "a@h", ID: "id1"})
	require.ErrorIs(t, err, ErrMissingField)

	_, err = New(Params{To: "a@h", Directive: "ping"})
	require.ErrorIs(t, err, ErrMissingField)

	msg, err := New(Params{To: "a@h", Directive: "ping", ID: "id1"})
	require.NoError(t, err)
	require.Equal(t, "a@h", msg.To)
	require.False(t, msg.Replied)
	require.False(t, msg.DeferredReply)
}

type fakeProxy struct {
	lastOpts SendOptions
	sentID   string
	err      error
}

func (f *fakeProxy) SendMessage(opts SendOptions) (string, error) {
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.sentID, nil
}

func TestReplyRequiresHiveProxy(t *testing.T) {
	msg, err := New(Params{
		To: "a@h", Directive: "ping", ID: "id1",
		FromID: fn.Some("b@h"),
	})
	require.NoError(t, err)

	_, err = msg.Reply("pong")
	require.ErrorIs(t, err, ErrNoHiveProxy)
}

func TestReplyRequiresSender(t *testing.T) {
	proxy := &fakeProxy{sentID: "h:1"}
	msg, err := New(Params{To: "a@h", Directive: "ping", ID: "id1"})
	require.NoError(t, err)
	msg.HiveProxy = proxy

	_, err = msg.Reply("pong")
	require.ErrorIs(t, err, ErrNoSender)
}

func TestReplySetsReplied(t *testing.T) {
	proxy := &fakeProxy{sentID: "h:1"}
	msg, err := New(Params{
		To: "a@h", Directive: "ping", ID: "id1",
		FromID: fn.Some("b@h"), WantsReply: true,
	})
	require.NoError(t, err)
	msg.HiveProxy = proxy

	id, err := msg.Reply(map[string]any{"ok": true})
	require.NoError(t, err)
	require.Equal(t, "h:1", id)
	require.True(t, msg.Replied)

	require.Equal(t, "a@h", proxy.lastOpts.FromID.UnwrapOr(""))
	require.Equal(t, "b@h", proxy.lastOpts.To)
	require.Equal(t, "reply", proxy.lastOpts.Directive)
	require.Equal(t, "id1", proxy.lastOpts.InReplyTo.UnwrapOr(""))
	require.False(t, proxy.lastOpts.WantsReply)
}

func TestNeedsReply(t *testing.T) {
	msg, err := New(Params{
		To: "a@h", Directive: "ping", ID: "id1", WantsReply: true,
	})
	require.NoError(t, err)
	require.True(t, msg.NeedsReply())

	msg.DeferReply()
	require.False(t, msg.NeedsReply())

	msg.DeferredReply = false
	msg.Replied = true
	require.False(t, msg.NeedsReply())
}

func TestWireMapRoundTrip(t *testing.T) {
	msg, err := New(Params{
		To: "a@h", Directive: "ping", ID: "id1",
		FromID: fn.Some("b@h"), InReplyTo: fn.Some("id0"),
		Body: map[string]any{"x": "y"}, WantsReply: true,
	})
	require.NoError(t, err)

	wire := msg.ToWireMap()
	require.Equal(t, "id0", wire["in_reply_to"])

	back, err := FromWireMap(wire)
	require.NoError(t, err)
	require.Equal(t, msg.To, back.To)
	require.Equal(t, msg.Directive, back.Directive)
	require.Equal(t, msg.ID, back.ID)
	require.Equal(t, msg.FromID.UnwrapOr(""), back.FromID.UnwrapOr(""))
	require.Equal(t, msg.InReplyTo.UnwrapOr(""), back.InReplyTo.UnwrapOr(""))
	require.Equal(t, msg.WantsReply, back.WantsReply)
	require.False(t, back.Replied)
	require.False(t, back.DeferredReply)
}

func TestWireMapOmitsInReplyToWhenAbsent(t *testing.T) {
	msg, err := New(Params{To: "a@h", Directive: "ping", ID: "id1"})
	require.NoError(t, err)

	wire := msg.ToWireMap()
	_, present := wire["in_reply_to"]
	require.False(t, present)
}

func TestGobRoundTrip(t *testing.T) {
	msg, err := New(Params{
		To: "a@h", Directive: "ping", ID: "id1",
		FromID: fn.Some("b@h"), Body: map[string]any{"n": 1},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeGob(&buf, msg))

	back, err := DecodeGob(&buf)
	require.NoError(t, err)
	require.Equal(t, msg.To, back.To)
	require.Equal(t, msg.FromID.UnwrapOr(""), back.FromID.UnwrapOr(""))
}

// TestWireMapRoundTripProperty checks spec.md's round-trip invariant
// across arbitrary routing-field combinations, ignoring bookkeeping fields.
func TestWireMapRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		to := rapid.StringMatching(`[a-z0-9]{1,20}@[a-z0-9]{1,20}`).Draw(t, "to")
		directive := rapid.StringMatching(`[a-z_]{1,20}`).Draw(t, "directive")
		id := rapid.StringMatching(`[a-zA-Z0-9:_-]{1,30}`).Draw(t, "id")
		wantsReply := rapid.Bool().Draw(t, "wantsReply")
		hasFrom := rapid.Bool().Draw(t, "hasFrom")

		params := Params{
			To: to, Directive: directive, ID: id,
			WantsReply: wantsReply,
			Body:       rapid.StringMatching(`[a-z]{0,10}`).Draw(t, "body"),
		}
		if hasFrom {
			from := rapid.StringMatching(`[a-z0-9]{1,20}@[a-z0-9]{1,20}`).Draw(t, "from")
			params.FromID = fn.Some(from)
		}

		msg, err := New(params)
		require.NoError(t, err)

		back, err := FromWireMap(msg.ToWireMap())
		require.NoError(t, err)

		require.Equal(t, msg.To, back.To)
		require.Equal(t, msg.Directive, back.Directive)
		require.Equal(t, msg.ID, back.ID)
		require.Equal(t, msg.WantsReply, back.WantsReply)
		require.Equal(t, msg.FromID.UnwrapOr(""), back.FromID.UnwrapOr(""))
		require.Equal(t, msg.Body, back.Body)
	})
}
