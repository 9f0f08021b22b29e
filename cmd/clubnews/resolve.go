package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/clubnews/internal/app"
	"github.com/abelbrown/clubnews/internal/fetch"
	"github.com/abelbrown/clubnews/internal/news"
)

func resolveCmd(g *globalFlags) *cobra.Command {
	var writeDefault string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the feed once and report which tier served it",
		Long: `Resolve runs the remote, cache and built-in tiers once, exactly as the
interactive screen does at startup, and prints which tier served the
document along with any failures of the tiers before it.

With --write-default the built-in document is written to a file
instead, as a starting point for a local file:// feed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if writeDefault != "" {
				if err := fetch.WriteDocument(writeDefault, news.DefaultWire()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote default document to %s\n", writeDefault)
				return nil
			}

			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			cfg.Webhook.URL = ""

			s, err := app.Open(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			res := s.Start(cmd.Context())

			fmt.Fprintf(out, "Tier:      %s\n", res.Tier)
			fmt.Fprintf(out, "Coach:     %s\n", res.Document.CoachName)
			fmt.Fprintf(out, "Items:     %d\n", res.Document.Len())
			fmt.Fprintf(out, "Dropped:   %d\n", res.Report.Dropped)
			fmt.Fprintf(out, "Coerced:   %d\n", res.Report.Coerced)
			fmt.Fprintf(out, "Duration:  %s\n", res.Dur.Round(time.Millisecond))
			if len(res.Errors) == 0 {
				return nil
			}
			fmt.Fprintf(out, "\nFailures (%d):\n", len(res.Errors))
			for _, err := range res.Errors {
				fmt.Fprintf(out, "  [%s] %v\n", fetch.KindOf(err), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&writeDefault, "write-default", "", "Write the built-in document to this path and exit")
	return cmd
}
