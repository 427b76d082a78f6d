package cmd

import (
	"github.com/oakline/baseline/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Adaptive baseline assessment for early learners",
	Long:  "Baseline — terminal assessment that walks a learner through reading, math, speech, social-emotional, and science checks, adapting question difficulty as it goes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BASELINE_DB env var)")
	rootCmd.PersistentFlags().String("learner", "", "Learner identifier (overrides BASELINE_LEARNER env var)")
	rootCmd.PersistentFlags().String("variant", "fixed", "Assessment flow: fixed or component")
	rootCmd.PersistentFlags().String("server", "", "Assessment server base URL (local generation when empty)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then BASELINE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
