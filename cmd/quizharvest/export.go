package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/quizharvest/harvest"
)

func newExportCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the dataset into an SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := harvest.LoadDataset(a.cfg.Files.Dataset, a.logger)
			if err != nil {
				return err
			}
			runID, err := harvest.ExportSQLite(cmd.Context(), dbPath, ds)
			if err != nil {
				return err
			}
			a.logger.Info("export: done", "db", dbPath, "run_id", runID, "questions", ds.Len())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d questions to %s (%s)\n", ds.Len(), dbPath, runID)
			return err
		},
	}
	cmd.Flags().StringVar(&dbPath, "sqlite", "questions.db", "SQLite database path")
	return cmd
}
