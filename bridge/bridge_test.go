package bridge

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/hive"
)

func TestChannelTransportSendRecv(t *testing.T) {
	a, b := NewChannelTransportPair(4)
	ctx := context.Background()

	require.NoError(t, a.Send(ctx, []byte("ping")))

	dataCh, _ := b.Recv(ctx)
	select {
	case frame := <-dataCh:
		require.Equal(t, "ping", string(frame))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}

	require.NoError(t, a.Close())
}

// rwc is the closer handed to the newlineFramer in the test below: Close
// is a no-op recorded via closed.
type rwc struct {
	io.Reader
	io.Writer
	closed bool
}

func (c *rwc) Close() error {
	c.closed = true
	return nil
}

func TestNewlineFramerRoundTrip(t *testing.T) {
	readSide, writeSide := io.Pipe()

	closer := &rwc{Reader: readSide, Writer: nil}
	framer := newNewlineFramer(readSide, io.Discard, closer)

	go func() {
		_, _ = writeSide.Write([]byte("alpha\nbeta\n"))
		_ = writeSide.Close()
	}()

	dataCh, errCh := framer.Recv(context.Background())

	var got []string
	for frame := range dataCh {
		got = append(got, string(frame))
	}
	require.Equal(t, []string{"alpha", "beta"}, got)

	// The pipe closing surfaces as io.ErrClosedPipe or io.EOF on the
	// scanner; either way errCh closes once the read loop exits.
	for range errCh {
	}

	require.NoError(t, framer.Close())
	require.True(t, closer.closed)
}

func TestNewlineFramerSendFraming(t *testing.T) {
	var buf bytes.Buffer
	framer := newNewlineFramer(bytes.NewReader(nil), &buf, nil)

	require.NoError(t, framer.Send(context.Background(), []byte(`{"a":1}`)))
	require.NoError(t, framer.Send(context.Background(), []byte(`{"b":2}`)))

	require.Equal(t, "{\"a\":1}\n{\"b\":2}\n", buf.String())
}

func runHiveUntilDone(h *hive.Hive, timeout time.Duration, done chan<- error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	done <- h.Run(ctx)
}

// TestScenarioInterHiveForward is spec.md §8 scenario 6: hive A creates a
// remote actor on hive B through its ambassador, sends it run_errand, and
// gets the expected reply back across the bridge; both hives then shut
// down cleanly through the two-step remote shutdown protocol.
func TestScenarioInterHiveForward(t *testing.T) {
	hiveA := hive.New("hiveA")
	hiveB := hive.New("hiveB")

	tA, tB := NewChannelTransportPair(32)

	NewPeerHive(hiveB, tB)

	hiveB.RegisterActorClass("assistant", func(
		hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

		a := actor.New(id, "assistant", hp)
		a.Register("run_errand", func(
			m *envelope.Message) (actor.Continuation, error) {

			_, err := m.Reply(map[string]any{"did_your_grunt_work": true})
			return nil, err
		})
		return a, nil
	})

	ambassadorID, err := SetupAmbassador(hiveA, "hiveB", tA)
	require.NoError(t, err)
	require.NotEmpty(t, ambassadorID)

	replies := make(chan *envelope.Message, 1)

	var requester *actor.Actor
	requesterID, err := hiveA.CreateActor(func(
		hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

		a := actor.New(id, "requester", hp)
		requester = a

		a.Register("start", func(
			_ *envelope.Message) (actor.Continuation, error) {

			return actor.NewStepContinuation(
				func(_ *envelope.Message) (string, error) {
					return a.WaitOnMessage(
						"hive@hiveB", "create_actor",
						map[string]any{"class": "assistant"},
					)
				},
				func(reply *envelope.Message) (string, error) {
					body, _ := reply.Body.(map[string]any)
					assistantID, _ := body["actor_id"].(string)
					return a.WaitOnMessage(
						assistantID, "run_errand", nil,
					)
				},
				func(reply *envelope.Message) (string, error) {
					replies <- reply
					return "", nil
				},
			), nil
		})

		a.Register(ShutdownPeerDirective, ShutdownPeerHandler(a))

		return a, nil
	}, "requester")
	require.NoError(t, err)

	doneA := make(chan error, 1)
	doneB := make(chan error, 1)
	go runHiveUntilDone(hiveA, 5*time.Second, doneA)
	go runHiveUntilDone(hiveB, 5*time.Second, doneB)

	_, err = hiveA.SendMessage(envelope.SendOptions{
		To: requesterID, Directive: "start",
	})
	require.NoError(t, err)

	select {
	case reply := <-replies:
		body, _ := reply.Body.(map[string]any)
		require.Equal(t, true, body["did_your_grunt_work"])
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for cross-hive reply")
	}
	require.Equal(t, 0, requester.NumWaiting())

	_, err = hiveA.SendMessage(envelope.SendOptions{
		To:        requesterID,
		Directive: ShutdownPeerDirective,
		Body:      map[string]any{"peer_hive_id": "hiveB"},
	})
	require.NoError(t, err)

	require.NoError(t, <-doneB)

	hiveA.SendShutdown()
	require.NoError(t, <-doneA)
}
