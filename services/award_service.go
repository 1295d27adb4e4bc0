package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pivoLogAPI/internal/award"
	"pivoLogAPI/internal/stats"
)

// AwardService runs group award evaluation against Postgres. It is the
// pgx-backed implementation of the evaluator's GroupLister, TallySource
// and Store interfaces.
type AwardService struct {
	db        *pgxpool.Pool
	evaluator *award.Evaluator
}

func NewAwardService(db *pgxpool.Pool) *AwardService {
	s := &AwardService{db: db}
	s.evaluator = award.NewEvaluator(s, s, s)
	return s
}

// EvaluateForDate runs the full award pass for one date. Safe to re-run;
// already-awarded (group, type, date) combinations are skipped.
func (s *AwardService) EvaluateForDate(ctx context.Context, date time.Time) (int, error) {
	return s.evaluator.EvaluateForDate(ctx, date)
}

// GroupAwardView is an award joined with display data for the group feed.
type GroupAwardView struct {
	ID       uuid.UUID  `json:"id"`
	UserID   uuid.UUID  `json:"user_id"`
	UserName string     `json:"user_name"`
	Type     award.Type `json:"type"`
	Label    string     `json:"label"`
	Icon     string     `json:"icon"`
	Date     string     `json:"date"`
	Value    int        `json:"value"`
}

// ListForGroup returns the most recent awards in a group, newest first.
func (s *AwardService) ListForGroup(ctx context.Context, requesterID, groupID uuid.UUID, limit int) ([]*GroupAwardView, error) {
	var isMember bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE user_id = $1 AND group_id = $2)`,
		requesterID, groupID).Scan(&isMember)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrForbidden
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
	SELECT ga.id, ga.user_id, u.name, ga.type, ga.date, ga.value
	FROM group_awards ga
	INNER JOIN users u ON u.id = ga.user_id
	WHERE ga.group_id = $1
	ORDER BY ga.date DESC, ga.created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch awards: %w", err)
	}
	defer rows.Close()

	labels := make(map[award.Type]award.Strategy)
	for _, st := range award.Strategies() {
		labels[st.Type] = st
	}

	views := []*GroupAwardView{}
	for rows.Next() {
		v := &GroupAwardView{}
		var date time.Time
		if err := rows.Scan(&v.ID, &v.UserID, &v.UserName, &v.Type, &date, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan award: %w", err)
		}
		v.Date = date.Format("2006-01-02")
		if st, ok := labels[v.Type]; ok {
			v.Label = st.Label
			v.Icon = st.Icon
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// GroupIDs lists every group id. Part of award.GroupLister.
func (s *AwardService) GroupIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM groups ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Tallies aggregates one metric per group member over the window. Part of
// award.TallySource. Streak days cannot be expressed as a single SQL
// aggregate, so that metric loads each member's entries and reduces them
// in Go.
func (s *AwardService) Tallies(ctx context.Context, groupID uuid.UUID, metric award.Metric, from, to time.Time) ([]award.MemberValue, error) {
	if metric == award.MetricStreakDays {
		return s.streakTallies(ctx, groupID)
	}

	var query string
	switch metric {
	case award.MetricTotalQuantity:
		query = `
		SELECT gm.user_id, COALESCE(SUM(e.quantity), 0)
		FROM group_members gm
		LEFT JOIN entries e ON e.user_id = gm.user_id AND e.consumed_at >= $2 AND e.consumed_at < $3
		WHERE gm.group_id = $1
		GROUP BY gm.user_id
		`
	case award.MetricNightQuantity:
		query = `
		SELECT gm.user_id, COALESCE(SUM(e.quantity), 0)
		FROM group_members gm
		LEFT JOIN entries e ON e.user_id = gm.user_id
			AND e.consumed_at >= $2 AND e.consumed_at < $3
			AND EXTRACT(HOUR FROM e.consumed_at) < 5
		WHERE gm.group_id = $1
		GROUP BY gm.user_id
		`
	case award.MetricLifetimeTotal:
		query = `
		SELECT gm.user_id, COALESCE(SUM(e.quantity), 0)
		FROM group_members gm
		LEFT JOIN entries e ON e.user_id = gm.user_id AND e.consumed_at >= $2 AND e.consumed_at < $3
		WHERE gm.group_id = $1
		GROUP BY gm.user_id
		`
		// Lifetime ignores the window's lower bound.
		from = time.Time{}
	case award.MetricMaxSingleVolume:
		query = `
		SELECT gm.user_id, COALESCE(MAX(e.volume_ml), 0)
		FROM group_members gm
		LEFT JOIN entries e ON e.user_id = gm.user_id AND e.consumed_at >= $2 AND e.consumed_at < $3
		WHERE gm.group_id = $1
		GROUP BY gm.user_id
		`
	default:
		return nil, fmt.Errorf("unknown award metric %q", metric)
	}

	rows, err := s.db.Query(ctx, query, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to tally %s: %w", metric, err)
	}
	defer rows.Close()

	var values []award.MemberValue
	for rows.Next() {
		var v award.MemberValue
		if err := rows.Scan(&v.UserID, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *AwardService) streakTallies(ctx context.Context, groupID uuid.UUID) ([]award.MemberValue, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM group_members WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var memberIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		memberIDs = append(memberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	values := make([]award.MemberValue, 0, len(memberIDs))
	for _, id := range memberIDs {
		events, err := loadUserEvents(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		snap := stats.Aggregate(events)
		values = append(values, award.MemberValue{UserID: id, Value: snap.ConsecutiveDays})
	}
	return values, nil
}

// Exists reports whether the award was already granted. Part of
// award.Store.
func (s *AwardService) Exists(ctx context.Context, groupID uuid.UUID, awardType award.Type, date time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM group_awards WHERE group_id = $1 AND type = $2 AND date = $3)`
	err := s.db.QueryRow(ctx, query, groupID, awardType, date.Format("2006-01-02")).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check award: %w", err)
	}
	return exists, nil
}

// Save persists one award. The (group_id, type, date) unique constraint
// makes concurrent duplicate runs collapse into a single row.
func (s *AwardService) Save(ctx context.Context, a award.Award) error {
	query := `
	INSERT INTO group_awards (id, group_id, user_id, type, date, value, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (group_id, type, date) DO NOTHING
	`
	_, err := s.db.Exec(ctx, query, a.ID, a.GroupID, a.UserID, a.Type, a.Date.Format("2006-01-02"), a.Value)
	if err != nil {
		return fmt.Errorf("failed to save award: %w", err)
	}
	return nil
}
