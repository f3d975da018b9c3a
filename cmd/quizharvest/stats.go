package main

import (
	"github.com/spf13/cobra"

	"github.com/hazyhaar/quizharvest/harvest"
	"github.com/hazyhaar/quizharvest/quiz"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print summary tables of the dataset file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := harvest.LoadDataset(a.cfg.Files.Dataset, a.logger)
			if err != nil {
				return err
			}
			return harvest.WriteSummary(cmd.OutOrStdout(), quiz.Count(ds.Questions()))
		},
	}
}
