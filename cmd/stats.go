package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skiquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime stats from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		st, err := s.EventRepo().LifetimeStats(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if st.Games == 0 {
			fmt.Println("No runs journaled yet. Start one with: skiquiz play")
			return nil
		}

		sep := strings.Repeat("─", 40)
		fmt.Println("Lifetime")
		fmt.Println(sep)
		fmt.Printf("%-16s %d (%d free)\n", "Games", st.Games, st.FreeGames)
		fmt.Printf("%-16s %d\n", "Best score", st.BestScore)
		fmt.Printf("%-16s %d\n", "Average score", st.AverageScore())
		fmt.Printf("%-16s %d%% (%d/%d)\n", "Accuracy", st.Accuracy(), st.Correct, st.Questions)
		fmt.Printf("%-16s %d\n", "Perfect runs", st.PerfectGames)
		fmt.Printf("%-16s %d\n", "Timeouts", st.Timeouts)
		fmt.Printf("%-16s %d\n", "Badges earned", st.Badges)

		if len(st.Tickets) > 0 {
			fmt.Println()
			fmt.Println("Ticket flow")
			fmt.Println(sep)
			kinds := make([]string, 0, len(st.Tickets))
			for k := range st.Tickets {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				fmt.Printf("%-16s %+d\n", k, st.Tickets[store.TicketKind(k)])
			}
		}

		snap, err := s.SnapshotRepo().Latest(ctx)
		if err != nil {
			return fmt.Errorf("query snapshot: %w", err)
		}
		if snap != nil {
			d := snap.Data
			fmt.Println()
			fmt.Printf("Last session (%s)\n", snap.Timestamp.Local().Format("2006-01-02 15:04"))
			fmt.Println(sep)
			fmt.Printf("%-16s %s\n", "Skier", d.Username)
			fmt.Printf("%-16s %d\n", "Tickets", d.Tickets)
			fmt.Printf("%-16s %d\n", "High score", d.HighScore)
			fmt.Printf("%-16s %d days\n", "Streak", d.StreakDays)
			fmt.Printf("%-16s %s\n", "Badges", strings.Join(d.Badges, ", "))
		}
		return nil
	},
}
