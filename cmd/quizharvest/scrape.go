package main

import (
	"github.com/spf13/cobra"

	"github.com/hazyhaar/quizharvest/harvest"
)

func newScrapeCmd(a *app) *cobra.Command {
	var (
		limit    int
		backend  string
		headless bool
		remote   string
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Harvest the questions missing from the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("limit") {
				cfg.Run.Limit = limit
			}
			if flags.Changed("backend") {
				cfg.Browser.Backend = backend
			}
			if flags.Changed("headless") {
				cfg.Browser.Headless = headless
			}
			if flags.Changed("remote") {
				cfg.Browser.Remote = remote
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			h := harvest.New(cfg, harvest.NewOpener(cfg, a.logger),
				harvest.WithLogger(a.logger),
				harvest.WithConfirmer(harvest.TerminalConfirmer()),
			)
			res, err := h.Run(cmd.Context())
			if err != nil {
				return err
			}
			if res.State == harvest.StateComplete && res.Total > 0 {
				return harvest.WriteSummary(cmd.OutOrStdout(), res.Tally)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&limit, "limit", 0, "harvest at most this many new questions (0 = all)")
	f.StringVar(&backend, "backend", harvest.BackendRod, "browsing backend: rod, http")
	f.BoolVar(&headless, "headless", false, "hide the browser window (needs saved cookies)")
	f.StringVar(&remote, "remote", "", "WebSocket URL of a running Chrome to drive")
	return cmd
}
