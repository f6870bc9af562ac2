package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// GameEventData describes one completed quiz.
type GameEventData struct {
	SessionID    string
	Free         bool
	Score        int
	Correct      int
	Total        int
	Perfect      bool
	PersonalBest bool
	DurationMs   int64
}

// GameEventRecord is a stored GameEventData.
type GameEventRecord struct {
	GameEventData
	Sequence  int64
	Timestamp time.Time
	Badges    int
}

// AnswerEventData describes one resolved question.
type AnswerEventData struct {
	SessionID   string
	QuestionID  string
	Selected    string
	Correct     bool
	TimedOut    bool
	RemainingMs int64
	Points      int
}

// BadgeEventData records a badge unlock.
type BadgeEventData struct {
	SessionID string
	BadgeID   string
}

// BadgeEventRecord is a stored BadgeEventData.
type BadgeEventRecord struct {
	BadgeEventData
	Sequence  int64
	Timestamp time.Time
}

// TicketKind classifies a ticket balance change.
type TicketKind string

const (
	TicketPurchase   TicketKind = "purchase"
	TicketReferral   TicketKind = "referral"
	TicketDailyBonus TicketKind = "daily_bonus"
	TicketReplay     TicketKind = "replay"
	TicketReward     TicketKind = "reward"
)

// TicketEventData records a change to the ticket balance.
type TicketEventData struct {
	Kind    TicketKind
	Delta   int
	Ref     string // shop item id or referral code
	Balance int    // balance after the change
}

// TicketFlow sums ticket movements by kind.
type TicketFlow map[TicketKind]int

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLMRequestEventData.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMUsageStats aggregates LLM usage per purpose or model.
type LLMUsageStats struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LifetimeStats summarises every journaled game.
type LifetimeStats struct {
	Games        int
	FreeGames    int
	BestScore    int
	TotalScore   int
	Correct      int
	Questions    int
	PerfectGames int
	Timeouts     int
	Badges       int
	Tickets      TicketFlow
}

// AverageScore is the rounded mean score per game.
func (s LifetimeStats) AverageScore() int {
	if s.Games == 0 {
		return 0
	}
	return (s.TotalScore + s.Games/2) / s.Games
}

// Accuracy is the rounded percentage of correct answers.
func (s LifetimeStats) Accuracy() int {
	if s.Questions == 0 {
		return 0
	}
	return (s.Correct*100 + s.Questions/2) / s.Questions
}

// EventRepo provides append and query access to journal events.
type EventRepo interface {
	AppendGameEvent(ctx context.Context, data GameEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendBadgeEvent(ctx context.Context, data BadgeEventData) error
	AppendTicketEvent(ctx context.Context, data TicketEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	RecentGames(ctx context.Context, opts QueryOpts) ([]GameEventRecord, error)
	BadgeUnlocks(ctx context.Context, opts QueryOpts) ([]BadgeEventRecord, error)
	LifetimeStats(ctx context.Context) (LifetimeStats, error)

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsageStats, error)

	// Reset deletes every journaled event.
	Reset(ctx context.Context) error
}

// SnapshotData captures the player's record when a session ends.
type SnapshotData struct {
	Version        int      `json:"version"`
	Username       string   `json:"username"`
	Tickets        int      `json:"tickets"`
	HighScore      int      `json:"high_score"`
	StreakDays     int      `json:"streak_days"`
	GamesPlayed    int      `json:"games_played"`
	TotalScore     int      `json:"total_score"`
	PerfectGames   int      `json:"perfect_games"`
	Badges         []string `json:"badges"`
	ReferralCode   string   `json:"referral_code"`
	ReferralsCount int      `json:"referrals_count"`
}

// Snapshot is a point-in-time capture of the player's record.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages end-of-session snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}
