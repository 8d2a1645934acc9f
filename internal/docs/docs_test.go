package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/hive"
)

func TestRenderDirectiveTableMarkdown(t *testing.T) {
	h := hive.New("hiveA")

	_, err := h.CreateActor(func(
		hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

		a := actor.New(id, "professor", hp)
		a.Register("run_errand", func(
			_ *envelope.Message) (actor.Continuation, error) {
			return nil, nil
		})
		a.Register("status", func(
			_ *envelope.Message) (actor.Continuation, error) {
			return nil, nil
		})
		return a, nil
	}, "professor")
	require.NoError(t, err)

	md := RenderDirectiveTableMarkdown(h)
	require.Contains(t, md, "professor@hiveA")
	require.Contains(t, md, "`run_errand`")
	require.Contains(t, md, "`status`")
	require.Contains(t, md, "hive@hiveA")
}

func TestRenderDirectiveTableHTML(t *testing.T) {
	h := hive.New("hiveB")

	out, err := RenderDirectiveTable(h)
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
	require.Contains(t, string(out), "hive@hiveB")
}
