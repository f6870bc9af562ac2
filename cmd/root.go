package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skiquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "skiquiz",
	Short: "Ski trivia in your terminal",
	Long:  "SkiQuiz is a timed ski and snowboard trivia game: five questions, five seconds each, tickets to play.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, launch{})
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite journal file (overrides SKIQUIZ_DB env var)")
	pf.String("config", "", "Path to config.yaml (overrides SKIQUIZ_CONFIG env var)")
	pf.String("content", "", "Path to a content pack override")
	pf.Bool("no-journal", false, "Do not record games to the journal")
	pf.String("debug", "", "Write a debug log to this file")
	pf.Lookup("debug").NoOptDefVal = defaultDebugLog

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config journal path, then SKIQUIZ_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}

// openStore opens the journal for the read-only subcommands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
