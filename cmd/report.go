package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/oakline/baseline/internal/store"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show recorded per-domain results",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		stats, err := st.EventRepo().StatsByDomain(context.Background())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No answers recorded yet.")
			return nil
		}

		fmt.Printf("%-10s  %8s  %8s  %9s\n", "Domain", "Answered", "Correct", "Accuracy")
		fmt.Println(strings.Repeat("─", 42))

		var totalAnswered, totalCorrect int
		for _, s := range stats {
			pct := 100 * float64(s.Correct) / float64(s.Answered)
			fmt.Printf("%-10s  %8d  %8d  %8.0f%%\n", s.Domain, s.Answered, s.Correct, pct)
			totalAnswered += s.Answered
			totalCorrect += s.Correct
		}

		fmt.Println(strings.Repeat("─", 42))
		pct := 100 * float64(totalCorrect) / float64(totalAnswered)
		fmt.Printf("%-10s  %8d  %8d  %8.0f%%\n", "TOTAL", totalAnswered, totalCorrect, pct)
		return nil
	},
}
