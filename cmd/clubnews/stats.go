package main

import (
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/abelbrown/clubnews/internal/fetch"
	"github.com/abelbrown/clubnews/internal/store"
)

func statsCmd(g *globalFlags) *cobra.Command {
	var (
		limit    int
		showRead bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show resolve history and read marks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DBPath())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if err := writeTierCounts(out, st); err != nil {
				return err
			}
			if err := writeRecentResolves(out, st, limit); err != nil {
				return err
			}
			if showRead {
				return writeReadMarks(out, st, limit)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of rows to show")
	cmd.Flags().BoolVar(&showRead, "read", false, "Also list read marks")
	return cmd
}

func writeTierCounts(w io.Writer, st *store.Store) error {
	counts, err := st.TierCounts()
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(w, "Resolves recorded:     %d\n", total)
	for _, tier := range []fetch.Tier{fetch.TierRemote, fetch.TierCache, fetch.TierDefault} {
		n := counts[string(tier)]
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		fmt.Fprintf(w, "  %-8s %6d  (%5.1f%%)\n", tier, n, pct)
	}
	return nil
}

func writeRecentResolves(w io.Writer, st *store.Store, limit int) error {
	rows, err := st.RecentResolves(limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nRecent resolves (%d):\n", len(rows))
	for _, r := range rows {
		line := fmt.Sprintf("  %s  %-7s  items=%-3d dropped=%-3d %6s",
			r.ResolvedAt.Local().Format("2006-01-02 15:04:05"),
			r.Tier, r.Items, r.Dropped, r.Dur.Round(time.Millisecond))
		if r.LastError != "" {
			line += "  err=" + runewidth.Truncate(r.LastError, 60, "...")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func writeReadMarks(w io.Writer, st *store.Store, limit int) error {
	marks, err := st.ReadMarks(limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nRead marks (%d):\n", len(marks))
	for _, m := range marks {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			m.ReadAt.Local().Format("2006-01-02 15:04"), m.Fingerprint, runewidth.Truncate(m.Title, 60, "..."))
	}
	return nil
}
