package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo over database/sql, with queries rendered
// by ent's SQL builder.
type eventRepo struct {
	db    *sql.DB
	seq   *sequenceCounter
	clock func() time.Time
}

// insert appends one row, stamping it with the next sequence and the current time.
func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, toMillis(r.clock())}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendGameEvent(ctx context.Context, data GameEventData) error {
	return r.insert(ctx, "game_events",
		[]string{"session_id", "free", "score", "correct", "total", "perfect", "personal_best", "duration_ms"},
		[]any{data.SessionID, data.Free, data.Score, data.Correct, data.Total, data.Perfect, data.PersonalBest, data.DurationMs},
	)
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	return r.insert(ctx, "answer_events",
		[]string{"session_id", "question_id", "selected", "correct", "timed_out", "remaining_ms", "points"},
		[]any{data.SessionID, data.QuestionID, data.Selected, data.Correct, data.TimedOut, data.RemainingMs, data.Points},
	)
}

func (r *eventRepo) AppendBadgeEvent(ctx context.Context, data BadgeEventData) error {
	return r.insert(ctx, "badge_events",
		[]string{"session_id", "badge_id"},
		[]any{data.SessionID, data.BadgeID},
	)
}

func (r *eventRepo) AppendTicketEvent(ctx context.Context, data TicketEventData) error {
	return r.insert(ctx, "ticket_events",
		[]string{"kind", "delta", "ref", "balance"},
		[]any{string(data.Kind), data.Delta, data.Ref, data.Balance},
	)
}

// applyOpts adds the QueryOpts filters and ordering to a selector.
func applyOpts(s *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.After > 0 {
		s.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		s.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		s.Where(entsql.GTE("timestamp", toMillis(opts.From)))
	}
	if !opts.To.IsZero() {
		s.Where(entsql.LTE("timestamp", toMillis(opts.To)))
	}
	s.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		s.Limit(opts.Limit)
	}
	return s
}

func (r *eventRepo) RecentGames(ctx context.Context, opts QueryOpts) ([]GameEventRecord, error) {
	b := builder()
	sel := b.Select("sequence", "timestamp", "session_id", "free", "score", "correct",
		"total", "perfect", "personal_best", "duration_ms").
		From(b.Table("game_events"))
	query, args := applyOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var records []GameEventRecord
	for rows.Next() {
		var rec GameEventRecord
		var ts int64
		if err := rows.Scan(&rec.Sequence, &ts, &rec.SessionID, &rec.Free, &rec.Score, &rec.Correct,
			&rec.Total, &rec.Perfect, &rec.PersonalBest, &rec.DurationMs); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		rec.Timestamp = fromMillis(ts)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	for i := range records {
		n, err := r.count(ctx, "badge_events", entsql.EQ("session_id", records[i].SessionID))
		if err != nil {
			return nil, err
		}
		records[i].Badges = n
	}
	return records, nil
}

func (r *eventRepo) BadgeUnlocks(ctx context.Context, opts QueryOpts) ([]BadgeEventRecord, error) {
	b := builder()
	sel := b.Select("sequence", "timestamp", "session_id", "badge_id").From(b.Table("badge_events"))
	query, args := applyOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	var records []BadgeEventRecord
	for rows.Next() {
		var rec BadgeEventRecord
		var ts int64
		if err := rows.Scan(&rec.Sequence, &ts, &rec.SessionID, &rec.BadgeID); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		rec.Timestamp = fromMillis(ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) LifetimeStats(ctx context.Context) (LifetimeStats, error) {
	var st LifetimeStats
	b := builder()

	query, args := b.Select(
		"COUNT(*)",
		"COALESCE(SUM(free), 0)",
		"COALESCE(MAX(score), 0)",
		"COALESCE(SUM(score), 0)",
		"COALESCE(SUM(correct), 0)",
		"COALESCE(SUM(total), 0)",
		"COALESCE(SUM(perfect), 0)",
	).From(b.Table("game_events")).Query()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&st.Games, &st.FreeGames, &st.BestScore, &st.TotalScore, &st.Correct, &st.Questions, &st.PerfectGames,
	)
	if err != nil {
		return st, fmt.Errorf("aggregate games: %w", err)
	}

	if st.Timeouts, err = r.count(ctx, "answer_events", entsql.EQ("timed_out", true)); err != nil {
		return st, err
	}
	if st.Badges, err = r.count(ctx, "badge_events", nil); err != nil {
		return st, err
	}

	query, args = b.Select("kind", "COALESCE(SUM(delta), 0)").
		From(b.Table("ticket_events")).
		GroupBy("kind").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return st, fmt.Errorf("aggregate tickets: %w", err)
	}
	defer rows.Close()

	st.Tickets = make(TicketFlow)
	for rows.Next() {
		var kind string
		var sum int
		if err := rows.Scan(&kind, &sum); err != nil {
			return st, fmt.Errorf("scan tickets: %w", err)
		}
		st.Tickets[TicketKind(kind)] = sum
	}
	return st, rows.Err()
}

func (r *eventRepo) count(ctx context.Context, table string, where *entsql.Predicate) (int, error) {
	b := builder()
	sel := b.Select(entsql.Count("*")).From(b.Table(table))
	if where != nil {
		sel.Where(where)
	}
	query, args := sel.Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r *eventRepo) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	for _, table := range eventTables {
		query, args := builder().Delete(table).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
