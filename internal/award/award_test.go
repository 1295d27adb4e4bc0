package award

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestApplicable(t *testing.T) {
	// 2026-02-04 is a Wednesday, mid-month: daily strategies only.
	daily := Applicable(date("2026-02-04"))
	for _, s := range daily {
		if s.Cadence != CadenceDaily {
			t.Errorf("weekday run included %s (%s)", s.Type, s.Cadence)
		}
	}
	if len(daily) != 5 {
		t.Errorf("got %d daily strategies, want 5", len(daily))
	}

	// 2026-02-08 is a Sunday: weekly joins in.
	if !hasType(Applicable(date("2026-02-08")), TypeDrinkerOfWeek) {
		t.Error("Sunday run should include drinker_of_week")
	}
	if hasType(Applicable(date("2026-02-07")), TypeDrinkerOfWeek) {
		t.Error("Saturday run should not include drinker_of_week")
	}

	// 2026-02-28 is the last day of February: monthly joins in.
	if !hasType(Applicable(date("2026-02-28")), TypeDrinkerOfMonth) {
		t.Error("month-end run should include drinker_of_month")
	}
	if hasType(Applicable(date("2026-02-27")), TypeDrinkerOfMonth) {
		t.Error("2026-02-27 run should not include drinker_of_month")
	}
}

func TestStrategyWindows(t *testing.T) {
	day := Strategy{Cadence: CadenceDaily}
	from, to := day.Window(date("2026-02-04"))
	if from.Hour() != 5 || !to.Equal(from.AddDate(0, 0, 1)) {
		t.Errorf("day window = [%v, %v)", from, to)
	}
	if from.Day() != 4 {
		t.Errorf("day window starts on day %d, want 4", from.Day())
	}

	week := Strategy{Cadence: CadenceWeekly}
	from, to = week.Window(date("2026-02-08")) // Sunday
	if from.Weekday() != time.Monday || from.Hour() != 5 {
		t.Errorf("week window should start Monday 05:00, got %v", from)
	}
	if !to.Equal(from.AddDate(0, 0, 7)) {
		t.Errorf("week window should span 7 days, got [%v, %v)", from, to)
	}

	month := Strategy{Cadence: CadenceMonthly}
	from, to = month.Window(date("2026-02-28"))
	if from.Day() != 1 || from.Month() != time.February || from.Hour() != 5 {
		t.Errorf("month window start = %v, want Feb 1 05:00", from)
	}
	if to.Day() != 1 || to.Month() != time.March {
		t.Errorf("month window end = %v, want Mar 1 05:00", to)
	}
}

func TestPickWinner(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	winner, ok := PickWinner([]MemberValue{{a, 5}, {b, 3}, {c, 0}})
	if !ok || winner.UserID != a || winner.Value != 5 {
		t.Errorf("winner = %+v ok=%v, want A with 5", winner, ok)
	}

	// Tie breaks to the lowest UUID regardless of input order.
	winner, ok = PickWinner([]MemberValue{{c, 4}, {b, 4}, {a, 4}})
	if !ok || winner.UserID != a {
		t.Errorf("tie winner = %v, want lowest uuid", winner.UserID)
	}

	// All zero: nobody qualifies.
	if _, ok := PickWinner([]MemberValue{{a, 0}, {b, 0}}); ok {
		t.Error("zero tallies should produce no winner")
	}
	if _, ok := PickWinner(nil); ok {
		t.Error("empty group should produce no winner")
	}
}

type memoryStore struct {
	awards map[string]Award
}

func newMemoryStore() *memoryStore {
	return &memoryStore{awards: make(map[string]Award)}
}

func (s *memoryStore) key(groupID uuid.UUID, awardType Type, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", groupID, awardType, date.Format("2006-01-02"))
}

func (s *memoryStore) Exists(_ context.Context, groupID uuid.UUID, awardType Type, date time.Time) (bool, error) {
	_, ok := s.awards[s.key(groupID, awardType, date)]
	return ok, nil
}

func (s *memoryStore) Save(_ context.Context, a Award) error {
	s.awards[s.key(a.GroupID, a.Type, a.Date)] = a
	return nil
}

type staticTallies struct {
	byMetric map[Metric][]MemberValue
}

func (s staticTallies) Tallies(_ context.Context, _ uuid.UUID, metric Metric, _, _ time.Time) ([]MemberValue, error) {
	return s.byMetric[metric], nil
}

type staticGroups []uuid.UUID

func (g staticGroups) GroupIDs(_ context.Context) ([]uuid.UUID, error) {
	return g, nil
}

func TestEvaluateForDate(t *testing.T) {
	groupID := uuid.New()
	memberA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	memberB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	store := newMemoryStore()
	tallies := staticTallies{byMetric: map[Metric][]MemberValue{
		MetricTotalQuantity: {{memberA, 5}, {memberB, 3}},
		MetricLifetimeTotal: {{memberB, 250}, {memberA, 120}},
		// No night drinks, no streaks, no volumes: those types get no winner.
	}}

	ev := NewEvaluator(staticGroups{groupID}, tallies, store)

	// Wednesday: drinker_of_day and leader should be awarded.
	saved, err := ev.EvaluateForDate(context.Background(), date("2026-02-04"))
	if err != nil {
		t.Fatal(err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}

	dayAward, ok := store.awards[store.key(groupID, TypeDrinkerOfDay, date("2026-02-04"))]
	if !ok || dayAward.UserID != memberA || dayAward.Value != 5 {
		t.Errorf("drinker_of_day = %+v, want member A with value 5", dayAward)
	}

	leaderAward := store.awards[store.key(groupID, TypeLeader, date("2026-02-04"))]
	if leaderAward.UserID != memberB || leaderAward.Value != 250 {
		t.Errorf("leader = %+v, want member B with value 250", leaderAward)
	}
}

func TestEvaluateForDateIdempotent(t *testing.T) {
	groupID := uuid.New()
	member := uuid.New()

	store := newMemoryStore()
	tallies := staticTallies{byMetric: map[Metric][]MemberValue{
		MetricTotalQuantity: {{member, 4}},
	}}
	ev := NewEvaluator(staticGroups{groupID}, tallies, store)

	first, err := ev.EvaluateForDate(context.Background(), date("2026-02-04"))
	if err != nil {
		t.Fatal(err)
	}
	if first == 0 {
		t.Fatal("first run saved nothing")
	}

	before := len(store.awards)
	again, err := ev.EvaluateForDate(context.Background(), date("2026-02-04"))
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Errorf("second run saved %d awards, want 0", again)
	}
	if len(store.awards) != before {
		t.Errorf("award set changed on re-run: %d -> %d", before, len(store.awards))
	}
}

func TestEvaluateSundayAddsWeekly(t *testing.T) {
	groupID := uuid.New()
	member := uuid.New()

	store := newMemoryStore()
	tallies := staticTallies{byMetric: map[Metric][]MemberValue{
		MetricTotalQuantity: {{member, 2}},
	}}
	ev := NewEvaluator(staticGroups{groupID}, tallies, store)

	if _, err := ev.EvaluateForDate(context.Background(), date("2026-02-08")); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.awards[store.key(groupID, TypeDrinkerOfWeek, date("2026-02-08"))]; !ok {
		t.Error("Sunday run should persist drinker_of_week")
	}
}

func TestEvaluateEmptyGroup(t *testing.T) {
	store := newMemoryStore()
	ev := NewEvaluator(staticGroups{uuid.New()}, staticTallies{byMetric: map[Metric][]MemberValue{}}, store)

	saved, err := ev.EvaluateForDate(context.Background(), date("2026-02-04"))
	if err != nil {
		t.Fatal(err)
	}
	if saved != 0 || len(store.awards) != 0 {
		t.Errorf("empty group saved %d awards", saved)
	}
}

func hasType(strategies []Strategy, awardType Type) bool {
	for _, s := range strategies {
		if s.Type == awardType {
			return true
		}
	}
	return false
}
