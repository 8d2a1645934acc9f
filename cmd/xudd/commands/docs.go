package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/envelope"
	"github.com/xudd/xudd/hive"
	"github.com/xudd/xudd/internal/docs"
)

var docsHTML bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Render the demo hive's directive table",
	Long: `docs constructs the same professor/assistant/chair demo hive "run"
boots, without starting its dispatch loop, and renders a table of every
actor's local ID and registered directives — Markdown by default, or HTML
with --html.`,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().BoolVar(
		&docsHTML, "html", false, "Render as an HTML fragment instead of Markdown",
	)
}

func runDocs(_ *cobra.Command, _ []string) error {
	h := buildDemoHiveForIntrospection()

	if docsHTML {
		out, err := docs.RenderDirectiveTable(h)
		if err != nil {
			return fmt.Errorf("render docs: %w", err)
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	}

	fmt.Fprintln(os.Stdout, docs.RenderDirectiveTableMarkdown(h))
	return nil
}

// buildDemoHiveForIntrospection wires up the same actor classes "run" does,
// but never calls Hive.Run, since docs only needs the registry populated.
func buildDemoHiveForIntrospection() *hive.Hive {
	h := hive.New("demo")

	chairID, _ := h.CreateActor(func(
		hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

		a := actor.New(id, "chair", hp)
		a.Register("experiment_is_done", func(
			_ *envelope.Message) (actor.Continuation, error) {
			return nil, nil
		})
		return a, nil
	}, "chair")

	assistID, _ := h.CreateActor(func(
		hp hive.HiveProxy, id string, _ map[string]any) (*actor.Actor, error) {

		a := actor.New(id, "assist-0", hp)
		a.Register("run_errand", func(
			_ *envelope.Message) (actor.Continuation, error) {
			return nil, nil
		})
		return a, nil
	}, "assist-0")

	h.CreateActor(
		makeProfessorCtor("prof-0", assistID, chairID, 1), "prof-0",
	)

	return h
}
