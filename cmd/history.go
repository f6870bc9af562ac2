package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/skiquiz/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		games, err := s.EventRepo().RecentGames(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query games: %w", err)
		}
		if len(games) == 0 {
			fmt.Println("No runs journaled yet.")
			return nil
		}

		fmt.Printf("%-16s  %5s  %7s  %6s  %s\n", "When", "Score", "Correct", "Time", "Notes")
		fmt.Println(strings.Repeat("─", 60))
		for _, g := range games {
			var notes []string
			if g.Free {
				notes = append(notes, "free")
			}
			if g.Perfect {
				notes = append(notes, "perfect")
			}
			if g.PersonalBest {
				notes = append(notes, "best")
			}
			if g.Badges > 0 {
				notes = append(notes, fmt.Sprintf("%d badge", g.Badges))
			}
			d := time.Duration(g.DurationMs) * time.Millisecond
			fmt.Printf("%-16s  %5d  %3d/%-3d  %6s  %s\n",
				g.Timestamp.Local().Format("2006-01-02 15:04"),
				g.Score, g.Correct, g.Total,
				d.Round(time.Second).String(),
				strings.Join(notes, ", "))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
}
