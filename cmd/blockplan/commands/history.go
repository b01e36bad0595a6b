package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blockplan/blockplan/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
		planID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or show previously saved plans",
		Example: `  # List recent plans
  blockplan history --db plans.db

  # Show a saved plan's steps
  blockplan history --db plans.db --id 9b2f...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := stores.NewSQLiteStore(stores.Config{Path: dbPath})
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return fmt.Errorf("failed to open plan store: %w", err)
			}
			defer func() { _ = store.Close() }()

			if planID != "" {
				plan, err := store.GetPlan(cmd.Context(), planID)
				if err != nil {
					return err
				}
				return printPlan(plan)
			}

			records, err := store.ListPlans(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			for _, rec := range records {
				fmt.Printf("%s  %s  %d steps  %s\n",
					rec.ID, rec.CreatedAt.Format("2006-01-02 15:04:05"),
					rec.StepCount, rec.LayoutPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "plans.db", "SQLite database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of plans to list")
	cmd.Flags().StringVar(&planID, "id", "", "show the steps of a single plan")

	return cmd
}
