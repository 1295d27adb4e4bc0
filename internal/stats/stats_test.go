package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

func TestAggregateEmpty(t *testing.T) {
	snap := Aggregate(nil)
	if snap != (Snapshot{}) {
		t.Errorf("empty input should yield zero snapshot, got %+v", snap)
	}
}

func TestAggregateTotals(t *testing.T) {
	beer := uuid.New()
	events := []Event{
		{Quantity: 2, VolumeML: 500, ConsumedAt: at("2026-02-03 18:00"), BeerID: &beer, Brewery: strPtr("Plzensky Prazdroj")},
		{Quantity: 1, VolumeML: 330, ConsumedAt: at("2026-02-03 20:00")},
		{Quantity: 3, VolumeML: 400, ConsumedAt: at("2026-02-04 12:00")},
	}

	snap := Aggregate(events)

	if snap.TotalBeers != 6 {
		t.Errorf("TotalBeers = %d, want 6", snap.TotalBeers)
	}
	if want := 2*500 + 1*330 + 3*400; snap.TotalVolumeML != want {
		t.Errorf("TotalVolumeML = %d, want %d", snap.TotalVolumeML, want)
	}
	if snap.LargeBeers != 2 {
		t.Errorf("LargeBeers = %d, want 2", snap.LargeBeers)
	}
	if snap.SmallBeers != 1 {
		t.Errorf("SmallBeers = %d, want 1", snap.SmallBeers)
	}
	// 400ml counts toward neither bucket.
	if snap.UniqueBeers != 1 || snap.UniqueBreweries != 1 {
		t.Errorf("UniqueBeers/Breweries = %d/%d, want 1/1", snap.UniqueBeers, snap.UniqueBreweries)
	}
	if snap.MaxLoyal != 2 {
		t.Errorf("MaxLoyal = %d, want 2", snap.MaxLoyal)
	}
}

func TestAggregateDrinkingDayBuckets(t *testing.T) {
	// Three entries within one drinking day: evening, before midnight, and
	// at 02:00 the next calendar date.
	events := []Event{
		{Quantity: 2, VolumeML: 500, ConsumedAt: at("2026-02-03 19:00")},
		{Quantity: 2, VolumeML: 500, ConsumedAt: at("2026-02-03 23:30")},
		{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-04 02:00")},
	}

	snap := Aggregate(events)

	if snap.MaxDaily != 5 {
		t.Errorf("MaxDaily = %d, want 5 (late-night entry belongs to previous day)", snap.MaxDaily)
	}
	if snap.DaysWith5Beers != 1 {
		t.Errorf("DaysWith5Beers = %d, want 1", snap.DaysWith5Beers)
	}
	if snap.DaysWith10Beers != 0 {
		t.Errorf("DaysWith10Beers = %d, want 0", snap.DaysWith10Beers)
	}
	if snap.ConsecutiveDays != 1 {
		t.Errorf("ConsecutiveDays = %d, want 1", snap.ConsecutiveDays)
	}
}

func TestAggregateTimeFlags(t *testing.T) {
	snap := Aggregate([]Event{{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-03 08:00")}})
	if !snap.EarlyBird || snap.NightOwl {
		t.Errorf("08:00 entry: EarlyBird=%v NightOwl=%v, want true/false", snap.EarlyBird, snap.NightOwl)
	}

	snap = Aggregate([]Event{{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-03 02:00")}})
	if snap.EarlyBird || !snap.NightOwl {
		t.Errorf("02:00 entry: EarlyBird=%v NightOwl=%v, want false/true", snap.EarlyBird, snap.NightOwl)
	}

	// Hours >= 10 set neither flag.
	snap = Aggregate([]Event{{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-03 14:00")}})
	if snap.EarlyBird || snap.NightOwl {
		t.Errorf("14:00 entry should set neither flag, got EarlyBird=%v NightOwl=%v", snap.EarlyBird, snap.NightOwl)
	}
}

func TestAggregateWeekendUsesDrinkingDate(t *testing.T) {
	// Monday 02:00 belongs to Sunday's drinking day, so it counts as weekend.
	// 2026-02-09 is a Monday.
	snap := Aggregate([]Event{{Quantity: 3, VolumeML: 500, ConsumedAt: at("2026-02-09 02:00")}})
	if snap.WeekendBeers != 3 {
		t.Errorf("WeekendBeers = %d, want 3", snap.WeekendBeers)
	}

	// Monday evening is not weekend.
	snap = Aggregate([]Event{{Quantity: 3, VolumeML: 500, ConsumedAt: at("2026-02-09 20:00")}})
	if snap.WeekendBeers != 0 {
		t.Errorf("WeekendBeers = %d, want 0", snap.WeekendBeers)
	}
}

func TestAggregateStreak(t *testing.T) {
	var events []Event
	for day := 1; day <= 7; day++ {
		events = append(events, Event{
			Quantity:   1,
			VolumeML:   500,
			ConsumedAt: time.Date(2026, 2, day, 18, 0, 0, 0, time.UTC),
		})
	}
	// Gap, then two more days.
	events = append(events,
		Event{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-10 18:00")},
		Event{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-11 18:00")},
	)

	snap := Aggregate(events)
	if snap.ConsecutiveDays != 7 {
		t.Errorf("ConsecutiveDays = %d, want 7", snap.ConsecutiveDays)
	}
}

func TestAggregateLoyalty(t *testing.T) {
	favorite := uuid.New()
	other := uuid.New()
	events := []Event{
		{Quantity: 6, VolumeML: 500, ConsumedAt: at("2026-02-03 18:00"), BeerID: &favorite},
		{Quantity: 4, VolumeML: 500, ConsumedAt: at("2026-02-04 18:00"), BeerID: &favorite},
		{Quantity: 9, VolumeML: 500, ConsumedAt: at("2026-02-05 18:00"), BeerID: &other},
		{Quantity: 20, VolumeML: 500, ConsumedAt: at("2026-02-06 18:00")}, // custom, no identity
	}

	snap := Aggregate(events)
	if snap.MaxLoyal != 10 {
		t.Errorf("MaxLoyal = %d, want 10", snap.MaxLoyal)
	}
	if snap.UniqueBeers != 2 {
		t.Errorf("UniqueBeers = %d, want 2", snap.UniqueBeers)
	}
}

func TestDailyCounts(t *testing.T) {
	events := []Event{
		{Quantity: 2, VolumeML: 500, ConsumedAt: at("2026-02-04 18:00")},
		{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-03 18:00")},
		{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-04 23:00")},
	}

	counts := DailyCounts(events)
	if len(counts) != 2 {
		t.Fatalf("got %d days, want 2", len(counts))
	}
	if counts[0].Date != "2026-02-03" || counts[0].Count != 1 {
		t.Errorf("first day = %+v, want 2026-02-03/1", counts[0])
	}
	if counts[1].Date != "2026-02-04" || counts[1].Count != 3 {
		t.Errorf("second day = %+v, want 2026-02-04/3", counts[1])
	}
}

func TestAveragePerDay(t *testing.T) {
	if avg := AveragePerDay(nil); avg != 0 {
		t.Errorf("AveragePerDay(nil) = %v, want 0", avg)
	}

	events := []Event{
		{Quantity: 2, VolumeML: 500, ConsumedAt: at("2026-02-03 18:00")},
		{Quantity: 3, VolumeML: 500, ConsumedAt: at("2026-02-04 18:00")},
	}
	if avg := AveragePerDay(events); avg != 2.5 {
		t.Errorf("AveragePerDay = %v, want 2.5", avg)
	}
}

func TestCurrentStreak(t *testing.T) {
	now := at("2026-02-05 18:00")
	events := []Event{
		{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-05 12:00")},
		{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-04 12:00")},
		{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-02 12:00")},
	}

	if got := CurrentStreak(events, now); got != 2 {
		t.Errorf("CurrentStreak = %d, want 2", got)
	}
	if got := CurrentStreak(events[1:], now); got != 0 {
		t.Errorf("CurrentStreak without today = %d, want 0", got)
	}
}
