package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pivoLogAPI/internal/beer"
	"pivoLogAPI/internal/drinkingday"
	"pivoLogAPI/internal/entry"
	"pivoLogAPI/internal/leaderboard"
	"pivoLogAPI/internal/stats"
)

type StatsService struct {
	db *pgxpool.Pool
}

func NewStatsService(db *pgxpool.Pool) *StatsService {
	return &StatsService{db: db}
}

type PersonalStats struct {
	Today         int                `json:"today"`
	ThisWeek      int                `json:"this_week"`
	ThisMonth     int                `json:"this_month"`
	ThisYear      int                `json:"this_year"`
	TotalBeers    int                `json:"total_beers"`
	TotalVolume   int                `json:"total_volume"`
	TodayEntries  []*entry.EntryView `json:"today_entries"`
	DailyCounts   []stats.DailyCount `json:"daily_counts"`
	TopBeers      []*beer.TopBeer    `json:"top_beers"`
	TopBreweries  []*beer.TopBrewery `json:"top_breweries"`
	CurrentStreak int                `json:"current_streak"`
	AveragePerDay float64            `json:"average_per_day"`
}

type UserPeriodStats struct {
	UserID      uuid.UUID `json:"user_id"`
	UserName    string    `json:"user_name"`
	Today       int       `json:"today"`
	ThisWeek    int       `json:"this_week"`
	ThisMonth   int       `json:"this_month"`
	ThisYear    int       `json:"this_year"`
	TotalBeers  int       `json:"total_beers"`
	TotalVolume int       `json:"total_volume"`
}

// MyStats builds the personal dashboard payload. Period boundaries all
// sit on the 05:00 drinking-day boundary.
func (s *StatsService) MyStats(ctx context.Context, userID uuid.UUID, now time.Time) (*PersonalStats, error) {
	dayStart := drinkingday.DayStart(now)
	dayEnd := drinkingday.DayEnd(now)
	weekStart := drinkingday.WeekStart(now)
	monthStart := drinkingday.MonthStart(now)
	yearStart := time.Date(dayStart.Year(), time.January, 1, drinkingday.BoundaryHour, 0, 0, 0, now.Location())

	result := &PersonalStats{}
	var err error

	if result.Today, err = s.countInPeriod(ctx, userID, dayStart, dayEnd); err != nil {
		return nil, err
	}
	if result.ThisWeek, err = s.countInPeriod(ctx, userID, weekStart, dayEnd); err != nil {
		return nil, err
	}
	if result.ThisMonth, err = s.countInPeriod(ctx, userID, monthStart, dayEnd); err != nil {
		return nil, err
	}
	if result.ThisYear, err = s.countInPeriod(ctx, userID, yearStart, dayEnd); err != nil {
		return nil, err
	}

	if result.TotalBeers, result.TotalVolume, err = s.totals(ctx, userID); err != nil {
		return nil, err
	}

	if result.TodayEntries, err = s.todayEntries(ctx, userID, dayStart, dayEnd); err != nil {
		return nil, err
	}

	events, err := loadUserEvents(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	thirtyDaysAgo := now.AddDate(0, 0, -30)
	var recent []stats.Event
	for _, e := range events {
		if !e.ConsumedAt.Before(thirtyDaysAgo) {
			recent = append(recent, e)
		}
	}
	result.DailyCounts = stats.DailyCounts(recent)
	result.CurrentStreak = stats.CurrentStreak(events, now)
	result.AveragePerDay = stats.AveragePerDay(events)

	if result.TopBeers, err = s.topBeers(ctx, userID); err != nil {
		return nil, err
	}
	if result.TopBreweries, err = s.topBreweries(ctx, userID); err != nil {
		return nil, err
	}

	return result, nil
}

// UserStats returns another user's period counts. Visible only to the
// user themselves or someone sharing at least one group with them.
func (s *StatsService) UserStats(ctx context.Context, requesterID, targetID uuid.UUID, now time.Time) (*UserPeriodStats, error) {
	var name string
	err := s.db.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, targetID).Scan(&name)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	if requesterID != targetID {
		shared, err := s.shareGroup(ctx, requesterID, targetID)
		if err != nil {
			return nil, err
		}
		if !shared {
			return nil, ErrForbidden
		}
	}

	dayStart := drinkingday.DayStart(now)
	dayEnd := drinkingday.DayEnd(now)
	weekStart := drinkingday.WeekStart(now)
	monthStart := drinkingday.MonthStart(now)
	yearStart := time.Date(dayStart.Year(), time.January, 1, drinkingday.BoundaryHour, 0, 0, 0, now.Location())

	result := &UserPeriodStats{UserID: targetID, UserName: name}

	if result.Today, err = s.countInPeriod(ctx, targetID, dayStart, dayEnd); err != nil {
		return nil, err
	}
	if result.ThisWeek, err = s.countInPeriod(ctx, targetID, weekStart, dayEnd); err != nil {
		return nil, err
	}
	if result.ThisMonth, err = s.countInPeriod(ctx, targetID, monthStart, dayEnd); err != nil {
		return nil, err
	}
	if result.ThisYear, err = s.countInPeriod(ctx, targetID, yearStart, dayEnd); err != nil {
		return nil, err
	}
	if result.TotalBeers, result.TotalVolume, err = s.totals(ctx, targetID); err != nil {
		return nil, err
	}

	return result, nil
}

// Leaderboard ranks all group members by consumption in the requested
// period (day, week, month or all). Members with zero entries are
// included. Ties rank by user id so repeated reads agree.
func (s *StatsService) Leaderboard(ctx context.Context, requesterID, groupID uuid.UUID, period string, now time.Time) (*leaderboard.Leaderboard, error) {
	isMember, err := s.isGroupMember(ctx, requesterID, groupID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrForbidden
	}

	var from, to time.Time
	switch period {
	case "day", "":
		from, to = drinkingday.DayStart(now), drinkingday.DayEnd(now)
		period = "day"
	case "week":
		from, to = drinkingday.WeekStart(now), drinkingday.DayEnd(now)
	case "month":
		from, to = drinkingday.MonthStart(now), drinkingday.DayEnd(now)
	case "all":
		from, to = time.Time{}, drinkingday.DayEnd(now)
	default:
		return nil, fmt.Errorf("unknown period %q", period)
	}

	query := `
	SELECT
		u.id,
		u.name,
		COALESCE(SUM(e.quantity), 0) AS total_beers,
		COALESCE(SUM(e.quantity * e.volume_ml), 0) AS total_volume
	FROM group_members gm
	INNER JOIN users u ON u.id = gm.user_id
	LEFT JOIN entries e ON e.user_id = u.id AND e.consumed_at >= $2 AND e.consumed_at < $3
	WHERE gm.group_id = $1
	GROUP BY u.id, u.name
	ORDER BY total_beers DESC, u.id ASC
	`

	rows, err := s.db.Query(ctx, query, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	board := &leaderboard.Leaderboard{GroupID: groupID, Period: period}
	rank := 0
	for rows.Next() {
		e := &leaderboard.LeaderboardEntry{}
		if err := rows.Scan(&e.UserID, &e.UserName, &e.TotalBeers, &e.TotalVolume); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		rank++
		e.Rank = rank
		board.Entries = append(board.Entries, e)
		if e.UserID == requesterID {
			board.UserPosition = e
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	board.TotalMembers = len(board.Entries)
	return board, nil
}

func (s *StatsService) countInPeriod(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	query := `
	SELECT COALESCE(SUM(quantity), 0)
	FROM entries
	WHERE user_id = $1 AND consumed_at >= $2 AND consumed_at < $3
	`
	if err := s.db.QueryRow(ctx, query, userID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

func (s *StatsService) totals(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var beers, volume int
	query := `
	SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(quantity * volume_ml), 0)
	FROM entries
	WHERE user_id = $1
	`
	if err := s.db.QueryRow(ctx, query, userID).Scan(&beers, &volume); err != nil {
		return 0, 0, fmt.Errorf("failed to get totals: %w", err)
	}
	return beers, volume, nil
}

func (s *StatsService) todayEntries(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) ([]*entry.EntryView, error) {
	query := `
	SELECT e.id, COALESCE(b.name, e.custom_beer_name, 'Neznámé pivo'), e.quantity, e.volume_ml, e.consumed_at
	FROM entries e
	LEFT JOIN beers b ON b.id = e.beer_id
	WHERE e.user_id = $1 AND e.consumed_at >= $2 AND e.consumed_at < $3
	ORDER BY e.consumed_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch today's entries: %w", err)
	}
	defer rows.Close()

	views := []*entry.EntryView{}
	for rows.Next() {
		v := &entry.EntryView{}
		if err := rows.Scan(&v.ID, &v.BeerName, &v.Quantity, &v.VolumeML, &v.ConsumedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *StatsService) topBeers(ctx context.Context, userID uuid.UUID) ([]*beer.TopBeer, error) {
	query := `
	SELECT COALESCE(b.name, e.custom_beer_name, 'Neznámé pivo') AS name, SUM(e.quantity) AS count
	FROM entries e
	LEFT JOIN beers b ON b.id = e.beer_id
	WHERE e.user_id = $1
	GROUP BY name
	ORDER BY count DESC, name ASC
	LIMIT 5
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top beers: %w", err)
	}
	defer rows.Close()

	top := []*beer.TopBeer{}
	for rows.Next() {
		t := &beer.TopBeer{}
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top beer: %w", err)
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

func (s *StatsService) topBreweries(ctx context.Context, userID uuid.UUID) ([]*beer.TopBrewery, error) {
	query := `
	SELECT b.brewery, SUM(e.quantity) AS count
	FROM entries e
	INNER JOIN beers b ON b.id = e.beer_id
	WHERE e.user_id = $1 AND b.brewery IS NOT NULL
	GROUP BY b.brewery
	ORDER BY count DESC, b.brewery ASC
	LIMIT 5
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top breweries: %w", err)
	}
	defer rows.Close()

	top := []*beer.TopBrewery{}
	for rows.Next() {
		t := &beer.TopBrewery{}
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top brewery: %w", err)
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

func (s *StatsService) shareGroup(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var shared bool
	query := `
	SELECT EXISTS(
		SELECT 1
		FROM group_members gm1
		INNER JOIN group_members gm2 ON gm1.group_id = gm2.group_id
		WHERE gm1.user_id = $1 AND gm2.user_id = $2
	)
	`
	if err := s.db.QueryRow(ctx, query, a, b).Scan(&shared); err != nil {
		return false, fmt.Errorf("failed to check shared group: %w", err)
	}
	return shared, nil
}

func (s *StatsService) isGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	var isMember bool
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE user_id = $1 AND group_id = $2)`
	if err := s.db.QueryRow(ctx, query, userID, groupID).Scan(&isMember); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return isMember, nil
}
