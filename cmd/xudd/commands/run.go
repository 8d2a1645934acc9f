package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/spf13/cobra"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/hive"
)

var (
	runPairs  int
	runCycles int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot a single hive running the professor/assistant demo",
	Long: `run boots one in-process hive, spawns a department-chair actor
and the requested number of professor/assistant pairs, and drives each
pair through the requested number of run_errand/reply cycles before the
chair shuts the hive down — the many-actors-many-steps scenario from
spec.md's testable properties.`,
	RunE: runDemo,
}

func init() {
	runCmd.Flags().IntVar(
		&runPairs, "pairs", 3, "Number of professor/assistant pairs",
	)
	runCmd.Flags().IntVar(
		&runCycles, "cycles", 5,
		"Number of run_errand/reply cycles per pair",
	)
}

func runDemo(_ *cobra.Command, _ []string) error {
	setupLogging(verbose, "")

	h := hive.New("")

	var (
		mu    sync.Mutex
		done  int
		total = runPairs
	)

	chairID, err := h.CreateActor(func(
		hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

		a := actor.New(id, "chair", hp)
		a.Register("experiment_is_done", func(
			_ *envelope.Message) (actor.Continuation, error) {

			mu.Lock()
			done++
			n := done
			mu.Unlock()

			fmt.Printf("chair: experiment %d/%d done\n", n, total)
			if n >= total {
				hp.SendShutdown()
			}
			return nil, nil
		})
		return a, nil
	}, "chair")
	if err != nil {
		return fmt.Errorf("create chair: %w", err)
	}

	for i := 0; i < runPairs; i++ {
		assistLocal := fmt.Sprintf("assist-%d", i)
		assistID, err := h.CreateActor(func(
			hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

			a := actor.New(id, assistLocal, hp)
			a.Register("run_errand", func(
				m *envelope.Message) (actor.Continuation, error) {

				_, err := m.Reply(map[string]any{
					"did_your_grunt_work": true,
				})
				return nil, err
			})
			return a, nil
		}, assistLocal)
		if err != nil {
			return fmt.Errorf("create assistant %d: %w", i, err)
		}

		profLocal := fmt.Sprintf("prof-%d", i)
		profID, err := h.CreateActor(
			makeProfessorCtor(profLocal, assistID, chairID, runCycles),
			profLocal,
		)
		if err != nil {
			return fmt.Errorf("create professor %d: %w", i, err)
		}

		if _, err := h.SendMessage(envelope.SendOptions{
			To: profID, Directive: "oversee_experiments",
			FromID: fn.Some(chairID),
		}); err != nil {
			return fmt.Errorf("kick off professor %d: %w", i, err)
		}
	}

	return h.Run(context.Background())
}

// makeProfessorCtor builds a professor actor whose oversee_experiments
// handler runs `cycles` request/reply rounds against assistID before
// notifying chairID, driven by a professorLoop continuation.
func makeProfessorCtor(
	localID, assistID, chairID string, cycles int) hive.ActorCtor {

	return func(hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {
		a := actor.New(id, localID, hp)

		a.Register("oversee_experiments", func(
			_ *envelope.Message) (actor.Continuation, error) {

			return &professorLoop{
				actor:     a,
				assistID:  assistID,
				chairID:   chairID,
				remaining: cycles,
			}, nil
		})

		return a, nil
	}
}

// professorLoop drives a professor through `remaining` run_errand/reply
// cycles before sending experiment_is_done to chairID.
type professorLoop struct {
	actor     *actor.Actor
	assistID  string
	chairID   string
	remaining int
}

func (c *professorLoop) Resume(
	_ *envelope.Message) (string, bool, error) {

	if c.remaining <= 0 {
		_, err := c.actor.Send(c.chairID, "experiment_is_done", nil)
		return "", true, err
	}

	c.remaining--

	id, err := c.actor.WaitOnMessage(c.assistID, "run_errand", nil)
	if err != nil {
		return "", false, err
	}

	return id, false, nil
}
