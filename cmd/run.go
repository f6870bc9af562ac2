package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/skiquiz/internal/app"
	"github.com/abhisek/skiquiz/internal/config"
	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/countdown"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/questionbank"
	"github.com/abhisek/skiquiz/internal/rewards"
	"github.com/abhisek/skiquiz/internal/session"
	"github.com/abhisek/skiquiz/internal/store"
)

// launch selects how the TUI opens.
type launch struct {
	autoStart bool
	free      bool
}

// recorderBuffer bounds the journal queue between the game and SQLite.
const recorderBuffer = 256

// defaultDebugLog is where a bare --debug writes.
const defaultDebugLog = "skiquiz-debug.log"

// snapshotsKept is how many end-of-run ledger snapshots survive pruning.
const snapshotsKept = 20

// loadConfig loads .env and the config file named by --config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("content"); p != "" {
		cfg.Content.Path = p
	}
	return cfg, nil
}

// runApp builds the ledger, the quiz controller and the reward services,
// then launches the TUI.
func runApp(cmd *cobra.Command, l launch) error {
	if path, _ := cmd.Flags().GetString("debug"); path != "" || os.Getenv("SKIQUIZ_DEBUG") == "1" {
		if path == "" {
			path = defaultDebugLog
		}
		f, err := tea.LogToFile(path, "skiquiz")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pack, err := content.Load(cfg.Content.Path)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	strict := cfg.StrictSampling(version)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	bank := questionbank.New(pack.Questions, questionbank.WithStrict(strict), questionbank.WithRand(rng))
	if strict {
		if err := cfg.ValidatePool(bank.Size()); err != nil {
			return err
		}
	}
	led := ledger.New(cfg.Progress(ledger.NewReferralCode(rng)), ledger.WithDailyReset(cfg.DailyReset()))

	var (
		journal   store.EventRepo
		snapshots store.SnapshotRepo
		recorder  *store.Recorder
	)
	noJournal, _ := cmd.Flags().GetBool("no-journal")
	if !noJournal && !cfg.Journal.Disabled {
		dbPath, err := resolveDBPath(cmd, cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning: journal unavailable:", err)
		} else {
			defer st.Close()
			recorder = store.NewRecorder(st.EventRepo(), recorderBuffer)
			journal = st.EventRepo()
			snapshots = st.SnapshotRepo()
			log.Printf("journal open at %s", dbPath)
		}
	}

	sessionOpts := []session.Option{}
	var ticketJournal rewards.Journal
	if recorder != nil {
		sessionOpts = append(sessionOpts, session.WithJournal(recorder))
		ticketJournal = recorder
	}
	ctrl := session.NewController(led, bank, countdown.TickerScheduler{}, cfg.Rules(), sessionOpts...)

	opts := app.Options{
		Ledger:     led,
		Controller: ctrl,
		Shop:       rewards.NewShop(led, pack.ShopItems, rewards.SimulatedGateway{}, ticketJournal),
		Daily:      rewards.NewDaily(led, cfg.Rewards.DailyLoginBonus, ticketJournal),
		Referrals:  rewards.NewReferrals(led, cfg.Rewards.ReferralJoinBonus, cfg.Rewards.ReferralBonus, ticketJournal),
		Pack:       pack,
		Journal:    journal,
		SkipSplash: l.autoStart,
		AutoStart:  l.autoStart,
		Free:       l.free,
	}

	runErr := app.Run(opts)

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "warning: some games were not journaled:", err)
		}
	}
	if snapshots != nil {
		if err := saveSnapshot(context.Background(), snapshots, led.Get()); err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
	}
	return runErr
}

// saveSnapshot keeps an informational copy of the record for `skiquiz stats`.
func saveSnapshot(ctx context.Context, repo store.SnapshotRepo, p ledger.Progress) error {
	ids := p.Badges.Sorted()
	badgeIDs := make([]string, len(ids))
	for i, id := range ids {
		badgeIDs[i] = string(id)
	}
	snap := &store.Snapshot{Data: store.SnapshotData{
		Version:        1,
		Username:       p.Username,
		Tickets:        p.Tickets,
		HighScore:      p.HighScore,
		StreakDays:     p.StreakDays,
		GamesPlayed:    p.TotalGamesPlayed,
		TotalScore:     p.TotalScore,
		PerfectGames:   p.PerfectGames,
		Badges:         badgeIDs,
		ReferralCode:   p.ReferralCode,
		ReferralsCount: p.ReferralsCount,
	}}
	if err := repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return repo.Prune(ctx, snapshotsKept)
}
