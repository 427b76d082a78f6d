package cmd

import (
	"fmt"
	"os"

	"github.com/oakline/baseline/internal/app"
	"github.com/oakline/baseline/internal/assess"
	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/llm"
	"github.com/oakline/baseline/internal/questiongen"
	"github.com/oakline/baseline/internal/snapshot"
	"github.com/oakline/baseline/internal/store"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start or resume an assessment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, builds the collaborator dependencies, and
// launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cfg, err := resolveFlowConfig(cmd)
	if err != nil {
		return err
	}

	snapStore, err := snapshot.NewSQLiteStore(st.DB())
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	deps := assess.Deps{
		Snapshots: snapStore,
		Events:    st.EventRepo(),
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		client := collab.NewHTTPClient(server)
		deps.Questions = client
		deps.Validator = client
		deps.Speech = client
		deps.Completer = client
		deps.Sessions = client
	} else {
		// Local mode: an LLM-backed generator serves and scores the
		// questions; session bookkeeping and completion stay in-process.
		mock := collab.NewMockBackend()
		deps.Speech = mock
		deps.Completer = mock
		deps.Sessions = mock

		provider, err := llm.NewProvider(ctx, llm.ConfigFromEnv(), st.EventRepo())
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Falling back to canned questions.")
			deps.Questions = mock
			deps.Validator = mock
		} else {
			gen := questiongen.New(provider, questiongen.DefaultConfig())
			deps.Questions = gen
			deps.Validator = gen
		}
	}

	engine := assess.NewEngine(cfg, resolveLearnerID(cmd), deps)
	return app.Run(engine, deps)
}

// resolveLearnerID returns the learner identifier from --learner, then
// BASELINE_LEARNER, then a default.
func resolveLearnerID(cmd *cobra.Command) string {
	if id, _ := cmd.Flags().GetString("learner"); id != "" {
		return id
	}
	if id := os.Getenv("BASELINE_LEARNER"); id != "" {
		return id
	}
	return "default-learner"
}

func resolveFlowConfig(cmd *cobra.Command) (*flow.Config, error) {
	variant, _ := cmd.Flags().GetString("variant")
	switch flow.Variant(variant) {
	case flow.VariantFixed:
		return flow.FixedQuestionConfig(), nil
	case flow.VariantComponent:
		return flow.ComponentFlowConfig(), nil
	default:
		return nil, fmt.Errorf("unknown variant %q (want fixed or component)", variant)
	}
}
