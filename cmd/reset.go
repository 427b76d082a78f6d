package cmd

import (
	"context"
	"fmt"

	"github.com/oakline/baseline/internal/snapshot"
	"github.com/oakline/baseline/internal/store"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the saved assessment and event history",
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

		ctx := context.Background()

		snapStore, err := snapshot.NewSQLiteStore(st.DB())
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		if err := snapStore.Clear(ctx); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
		if err := st.Reset(ctx); err != nil {
			return err
		}

		fmt.Println("Assessment data cleared.")
		return nil
	},
}
