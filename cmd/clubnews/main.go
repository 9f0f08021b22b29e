// Command clubnews shows the club news screen in the terminal and exposes
// the feed pipeline for scripting and debugging.
//
// Usage:
//
//	clubnews                 Interactive news screen
//	clubnews view            Print the filtered feed view
//	clubnews resolve         Resolve the feed once and report the tier
//	clubnews events          JSONL event log viewer
//	clubnews stats           Resolve history and read marks
//	clubnews config          Print the effective configuration
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/clubnews/internal/app"
	"github.com/abelbrown/clubnews/internal/config"
	"github.com/abelbrown/clubnews/internal/ui"
	"github.com/abelbrown/clubnews/internal/watch"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, buf[:n])
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	feedURL    string
	watch      bool
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "clubnews",
		Short: "Club news screen for the terminal",
		Long: `clubnews shows a categorized club news feed with a reader pane.

The feed is fetched from the configured URL. When that fails the last
good copy in the local cache is shown, and when there is no cache a
built-in document is shown instead.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), g)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.DefaultPath(), "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.feedURL, "url", "", "Feed URL (overrides config and environment)")
	cmd.Flags().BoolVarP(&g.watch, "watch", "w", false, "Reload automatically when a file:// feed changes")

	cmd.AddCommand(viewCmd(g), resolveCmd(g), eventsCmd(g), statsCmd(g), configCmd(g))
	return cmd
}

// loadConfig loads .env files, the YAML config and flag overrides.
func loadConfig(g *globalFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(config.DefaultEnvFiles()...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.feedURL != "" {
		cfg.Feed.URL = g.feedURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if g.watch {
		cfg.Watch = true
	}
	return cfg, nil
}

func runTUI(ctx context.Context, g *globalFlags) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	s, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Start(ctx)
	model := ui.New(s)

	if path, ok := s.WatchPath(); ok {
		w, err := watch.New(path, watch.DefaultDebounce, s.Log())
		if err != nil {
			s.Log().Warn("Feed watch disabled", "path", path, "error", err)
		} else if err := w.Start(ctx); err != nil {
			w.Stop()
			s.Log().Warn("Feed watch disabled", "path", path, "error", err)
		} else {
			defer w.Stop()
			model = model.WithWatch(w.Changes())
		}
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
