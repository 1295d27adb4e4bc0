package award

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"pivoLogAPI/internal/drinkingday"
)

type Type string

const (
	TypeDrinkerOfDay   Type = "drinker_of_day"
	TypeDrinkerOfWeek  Type = "drinker_of_week"
	TypeDrinkerOfMonth Type = "drinker_of_month"
	TypeLeader         Type = "leader"
	TypeNightRider     Type = "night_rider"
	TypeEndurance      Type = "endurance"
	TypeTankista       Type = "tankista"
)

// Cadence says on which evaluation dates a strategy produces an award.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"   // every evaluated date
	CadenceWeekly  Cadence = "weekly"  // only when the date is a Sunday
	CadenceMonthly Cadence = "monthly" // only on the last day of the month
)

// Metric names the aggregation the tally source must run for a strategy.
type Metric string

const (
	MetricTotalQuantity   Metric = "total_quantity"    // sum of quantity in window
	MetricNightQuantity   Metric = "night_quantity"    // quantity consumed between 00:00 and 05:00
	MetricLifetimeTotal   Metric = "lifetime_quantity" // all-time sum of quantity
	MetricStreakDays      Metric = "streak_days"       // longest consecutive drinking-day run
	MetricMaxSingleVolume Metric = "max_single_volume" // largest volume_ml of one entry
)

// Strategy is one award type: a named aggregation over a (group, window)
// pair. The catalog below is the only place award types are defined.
type Strategy struct {
	Type    Type
	Label   string
	Icon    string
	Cadence Cadence
	Metric  Metric
}

var strategies = []Strategy{
	{Type: TypeDrinkerOfDay, Label: "Pijan dne", Icon: "🍺", Cadence: CadenceDaily, Metric: MetricTotalQuantity},
	{Type: TypeDrinkerOfWeek, Label: "Pijan týdne", Icon: "🏆", Cadence: CadenceWeekly, Metric: MetricTotalQuantity},
	{Type: TypeDrinkerOfMonth, Label: "Pijan měsíce", Icon: "🥇", Cadence: CadenceMonthly, Metric: MetricTotalQuantity},
	{Type: TypeLeader, Label: "Lídr", Icon: "👑", Cadence: CadenceDaily, Metric: MetricLifetimeTotal},
	{Type: TypeNightRider, Label: "Noční jezdec", Icon: "🌙", Cadence: CadenceDaily, Metric: MetricNightQuantity},
	{Type: TypeEndurance, Label: "Vytrvalec", Icon: "🔥", Cadence: CadenceDaily, Metric: MetricStreakDays},
	{Type: TypeTankista, Label: "Tankista", Icon: "🛢️", Cadence: CadenceDaily, Metric: MetricMaxSingleVolume},
}

// Strategies returns the award catalog in evaluation order.
func Strategies() []Strategy {
	return strategies
}

// Applicable filters the catalog to the strategies active on date: daily
// always, weekly on Sundays (end of the drinking week), monthly on the
// calendar-last day of the month.
func Applicable(date time.Time) []Strategy {
	var active []Strategy
	for _, s := range strategies {
		switch s.Cadence {
		case CadenceWeekly:
			if date.Weekday() != time.Sunday {
				continue
			}
		case CadenceMonthly:
			if !drinkingday.IsLastDayOfMonth(date) {
				continue
			}
		}
		active = append(active, s)
	}
	return active
}

// Window returns the half-open consumption interval a strategy aggregates
// over for the given evaluation date. Lifetime metrics still receive the
// day window; their tally source ignores the lower bound. The date is
// anchored at noon so it cannot slip into the previous drinking day.
func (s Strategy) Window(date time.Time) (time.Time, time.Time) {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	switch s.Cadence {
	case CadenceWeekly:
		start := drinkingday.WeekStart(noon)
		return start, start.AddDate(0, 0, 7)
	case CadenceMonthly:
		return drinkingday.MonthStart(noon), drinkingday.NextMonthStart(noon)
	default:
		return drinkingday.DayStart(noon), drinkingday.DayEnd(noon)
	}
}

// MemberValue is one member's aggregate for a strategy window.
type MemberValue struct {
	UserID uuid.UUID
	Value  int
}

// PickWinner returns the member with the highest value. Ties break to the
// lowest user UUID (bytewise) so repeated runs pick the same winner. A
// zero or negative best value means nobody qualifies.
func PickWinner(values []MemberValue) (MemberValue, bool) {
	var best MemberValue
	found := false
	for _, v := range values {
		if v.Value <= 0 {
			continue
		}
		if !found || v.Value > best.Value ||
			(v.Value == best.Value && bytes.Compare(v.UserID[:], best.UserID[:]) < 0) {
			best = v
			found = true
		}
	}
	return best, found
}

// Award is the persisted winner fact, unique per (group, type, date).
type Award struct {
	ID        uuid.UUID `json:"id" db:"id"`
	GroupID   uuid.UUID `json:"group_id" db:"group_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Type      Type      `json:"type" db:"type"`
	Date      time.Time `json:"date" db:"date"`
	Value     int       `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TallySource supplies member aggregates for a group and window.
type TallySource interface {
	Tallies(ctx context.Context, groupID uuid.UUID, metric Metric, from, to time.Time) ([]MemberValue, error)
}

// Store persists award facts and answers the idempotency check.
type Store interface {
	Exists(ctx context.Context, groupID uuid.UUID, awardType Type, date time.Time) (bool, error)
	Save(ctx context.Context, a Award) error
}

// GroupLister enumerates the groups to evaluate.
type GroupLister interface {
	GroupIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Evaluator drives a full award run for one date. It is synchronous and
// idempotent: already-recorded (group, type, date) combinations are
// skipped, so re-running for the same date is a no-op and a crashed run
// can simply be retried.
type Evaluator struct {
	groups  GroupLister
	tallies TallySource
	store   Store
}

func NewEvaluator(groups GroupLister, tallies TallySource, store Store) *Evaluator {
	return &Evaluator{groups: groups, tallies: tallies, store: store}
}

// EvaluateForDate evaluates every applicable strategy for every group on
// the given date and returns the number of awards saved. Works for
// arbitrary past dates (backfill).
func (e *Evaluator) EvaluateForDate(ctx context.Context, date time.Time) (int, error) {
	groupIDs, err := e.groups.GroupIDs(ctx)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, groupID := range groupIDs {
		n, err := e.evaluateGroup(ctx, groupID, date)
		if err != nil {
			return saved, err
		}
		saved += n
	}
	return saved, nil
}

func (e *Evaluator) evaluateGroup(ctx context.Context, groupID uuid.UUID, date time.Time) (int, error) {
	saved := 0
	for _, strategy := range Applicable(date) {
		exists, err := e.store.Exists(ctx, groupID, strategy.Type, date)
		if err != nil {
			return saved, err
		}
		if exists {
			continue
		}

		from, to := strategy.Window(date)
		values, err := e.tallies.Tallies(ctx, groupID, strategy.Metric, from, to)
		if err != nil {
			return saved, err
		}

		winner, ok := PickWinner(values)
		if !ok {
			continue
		}

		a := Award{
			ID:      uuid.New(),
			GroupID: groupID,
			UserID:  winner.UserID,
			Type:    strategy.Type,
			Date:    truncateToDate(date),
			Value:   winner.Value,
		}
		if err := e.store.Save(ctx, a); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
