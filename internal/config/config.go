// Package config loads skiquiz settings from a YAML file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/skiquiz/internal/badges"
	"github.com/abhisek/skiquiz/internal/ledger"
	"github.com/abhisek/skiquiz/internal/session"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root of config.yaml.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Rewards RewardsConfig `yaml:"rewards"`
	Profile ProfileConfig `yaml:"profile"`
	Content ContentConfig `yaml:"content"`
	Journal JournalConfig `yaml:"journal"`
}

// GameConfig holds the quiz rules.
type GameConfig struct {
	QuestionsPerGame int    `yaml:"questions_per_game" validate:"gte=1"`
	TimePerQuestion  string `yaml:"time_per_question" validate:"required"`
	TickInterval     string `yaml:"tick_interval" validate:"required"`
	BaseScore        int    `yaml:"base_score" validate:"gte=0"`
	MaxSpeedBonus    int    `yaml:"max_speed_bonus" validate:"gte=0"`
	PerfectBonus     int    `yaml:"perfect_bonus" validate:"gte=0"`
	ReplayCost       int    `yaml:"replay_cost" validate:"gte=0"`

	// StrictSampling fails a quiz that asks for more questions than the pool
	// holds. Unset means strict in development builds only.
	StrictSampling *bool `yaml:"strict_sampling,omitempty"`
}

// RewardsConfig holds ticket payouts and the daily reset policy.
type RewardsConfig struct {
	CompletionPolicy  string `yaml:"completion_policy" validate:"oneof=none per_game"`
	TicketsPerGame    int    `yaml:"tickets_per_game" validate:"gte=0"`
	DailyLoginBonus   int    `yaml:"daily_login_bonus" validate:"gte=0"`
	ReferralJoinBonus int    `yaml:"referral_join_bonus" validate:"gte=0"`
	ReferralBonus     int    `yaml:"referral_bonus" validate:"gte=0"`
	DailyReset        string `yaml:"daily_reset" validate:"oneof=calendar process"`
}

// ProfileConfig seeds the player's record at startup.
type ProfileConfig struct {
	Username       string   `yaml:"username" validate:"required,max=20"`
	Tickets        int      `yaml:"tickets" validate:"gte=0"`
	HighScore      int      `yaml:"high_score" validate:"gte=0"`
	StreakDays     int      `yaml:"streak_days" validate:"gte=0"`
	TotalGames     int      `yaml:"total_games" validate:"gte=0"`
	TotalScore     int      `yaml:"total_score" validate:"gte=0"`
	PerfectGames   int      `yaml:"perfect_games" validate:"gte=0,ltefield=TotalGames"`
	TotalCorrect   int      `yaml:"total_correct" validate:"gte=0"`
	ReferralsCount int      `yaml:"referrals_count" validate:"gte=0"`
	Rank           int      `yaml:"rank" validate:"gte=0"`
	Badges         []string `yaml:"badges" validate:"dive,required"`
	Sound          bool     `yaml:"sound"`
	Haptic         bool     `yaml:"haptic"`
	Notifications  bool     `yaml:"notifications"`
}

// ContentConfig points at an optional content pack override.
type ContentConfig struct {
	Path string `yaml:"path"`
}

// JournalConfig controls the local event journal.
type JournalConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Game: GameConfig{
			QuestionsPerGame: 5,
			TimePerQuestion:  "5s",
			TickInterval:     "100ms",
			BaseScore:        100,
			MaxSpeedBonus:    20,
			PerfectBonus:     100,
			ReplayCost:       1,
		},
		Rewards: RewardsConfig{
			CompletionPolicy:  string(session.CompletionNone),
			TicketsPerGame:    1,
			DailyLoginBonus:   1,
			ReferralJoinBonus: 1,
			ReferralBonus:     3,
			DailyReset:        string(ledger.ResetCalendar),
		},
		Profile: ProfileConfig{
			Username:       "Guest Skier",
			Tickets:        5,
			StreakDays:     3,
			TotalGames:     12,
			TotalScore:     4500,
			PerfectGames:   2,
			TotalCorrect:   45,
			ReferralsCount: 2,
			Badges:         []string{string(badges.FirstRun)},
			Sound:          true,
			Haptic:         true,
			Notifications:  true,
		},
	}
}

// LoadDotEnv loads .env from the working directory. A missing file is not
// an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// DefaultPath resolves the config file location in priority order:
// 1. SKIQUIZ_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/skiquiz/config.yaml
// 3. ~/.config/skiquiz/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("SKIQUIZ_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "skiquiz", "config.yaml"), nil
}

// Load reads the config file at path over the defaults, applies environment
// overrides and validates the result. An empty path means DefaultPath; a
// missing file means defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SKIQUIZ_DB"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("SKIQUIZ_CONTENT"); v != "" {
		c.Content.Path = v
	}
	if v := os.Getenv("SKIQUIZ_COMPLETION_POLICY"); v != "" {
		c.Rewards.CompletionPolicy = v
	}
}

// Duration parses a duration string or returns the fallback if it is empty
// or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Rules converts the game and rewards sections into quiz rules.
func (c Config) Rules() session.Rules {
	def := session.DefaultRules()
	return session.Rules{
		QuestionsPerGame: c.Game.QuestionsPerGame,
		TimePerQuestion:  Duration(c.Game.TimePerQuestion, def.TimePerQuestion),
		TickInterval:     Duration(c.Game.TickInterval, def.TickInterval),
		BaseScore:        c.Game.BaseScore,
		MaxSpeedBonus:    c.Game.MaxSpeedBonus,
		PerfectBonus:     c.Game.PerfectBonus,
		ReplayCost:       c.Game.ReplayCost,
		Completion:       session.CompletionPolicy(c.Rewards.CompletionPolicy),
		TicketsPerGame:   c.Rewards.TicketsPerGame,
	}
}

// StrictSampling reports whether the question bank should refuse oversized
// draws for the given build version.
func (c Config) StrictSampling(version string) bool {
	if c.Game.StrictSampling != nil {
		return *c.Game.StrictSampling
	}
	return version == "(devel)" || version == "dev"
}

// DailyReset returns the ledger's daily flag policy.
func (c Config) DailyReset() ledger.DailyReset {
	return ledger.DailyReset(c.Rewards.DailyReset)
}

// Progress builds the starting ledger record.
func (c Config) Progress(referralCode string) ledger.Progress {
	p := c.Profile
	set := badges.NewSet()
	for _, id := range p.Badges {
		set.Add(badges.ID(id))
	}
	return ledger.Progress{
		Username:            p.Username,
		Tickets:             p.Tickets,
		HighScore:           p.HighScore,
		StreakDays:          p.StreakDays,
		TotalGamesPlayed:    p.TotalGames,
		TotalCorrectAnswers: p.TotalCorrect,
		TotalScore:          p.TotalScore,
		PerfectGames:        p.PerfectGames,
		Badges:              set,
		Rank:                p.Rank,
		ReferralCode:        referralCode,
		ReferralsCount:      p.ReferralsCount,
		Settings: ledger.Settings{
			SoundEnabled:         p.Sound,
			HapticEnabled:        p.Haptic,
			NotificationsEnabled: p.Notifications,
		},
	}
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
