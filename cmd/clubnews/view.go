package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/abelbrown/clubnews/internal/app"
	"github.com/abelbrown/clubnews/internal/fetch"
	"github.com/abelbrown/clubnews/internal/news"
	"github.com/abelbrown/clubnews/internal/viewstate"
)

// viewOutput is the --json shape of the view command: the wire document
// restricted to the built view, plus how it was obtained.
type viewOutput struct {
	Tier     fetch.Tier `json:"tier"`
	Category string     `json:"category"`
	Query    string     `json:"query,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
	news.WireDocument
}

func viewCmd(g *globalFlags) *cobra.Command {
	var (
		category string
		query    string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the feed view for a category and filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if category != "" {
				c, err := parseCategory(category)
				if err != nil {
					return err
				}
				s.SetCategory(c)
			}
			s.SetFilterText(query)

			if asJSON {
				return writeViewJSON(cmd.OutOrStdout(), s.State(), res)
			}
			writeViewText(cmd.OutOrStdout(), s.State(), res)
			for _, err := range res.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category to show (default: configured initial category)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func writeViewJSON(w io.Writer, state *viewstate.State, res fetch.Result) error {
	doc := state.Document()
	doc.Items = state.View()

	out := viewOutput{
		Tier:         res.Tier,
		Category:     string(state.Category()),
		Query:        state.FilterText(),
		WireDocument: doc.Wire(),
	}
	for _, err := range res.Errors {
		out.Errors = append(out.Errors, err.Error())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func writeViewText(w io.Writer, state *viewstate.State, res fetch.Result) {
	doc := state.Document()
	fmt.Fprintf(w, "Notícias para %s  [%s]\n", doc.CoachName, res.Tier)
	fmt.Fprintf(w, "Categoria: %s", state.Category())
	if q := state.FilterText(); q != "" {
		fmt.Fprintf(w, "  Filtro: %q", q)
	}
	fmt.Fprintf(w, "  (%d/%d)\n\n", state.Len(), doc.Len())

	for _, it := range state.Rows() {
		fmt.Fprintf(w, "%s  %s  %s\n",
			runewidth.FillRight(runewidth.Truncate(it.Date, 16, "…"), 16),
			runewidth.FillRight(runewidth.Truncate(string(it.Category), 22, "…"), 22),
			it.Title)
	}
}

// parseCategory accepts "Todas" or any category name or alias.
func parseCategory(s string) (news.Category, error) {
	if news.Category(s) == news.All {
		return news.All, nil
	}
	c, ok := news.Canonical(s)
	if !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
