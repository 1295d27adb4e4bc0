package achievement

import (
	"testing"
	"time"

	"pivoLogAPI/internal/stats"
)

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCatalogSize(t *testing.T) {
	if len(Catalog()) != 21 {
		t.Errorf("catalog has %d entries, want 21", len(Catalog()))
	}
	for _, def := range Catalog() {
		if def.metric == nil || def.target <= 0 {
			t.Errorf("entry %s missing metric or target", def.ID)
		}
	}
}

func TestEvaluateFirstBeerOnly(t *testing.T) {
	snap := stats.Aggregate([]stats.Event{
		{Quantity: 1, VolumeML: 500, ConsumedAt: at("2026-02-03 18:00")},
	})

	newly := Evaluate(snap, nil)
	if len(newly) != 1 || newly[0].ID != "first_beer" {
		t.Fatalf("Evaluate = %v, want [first_beer]", ids(newly))
	}

	sizeMatters, _ := Find("size_matters")
	current, target := sizeMatters.Progress(snap)
	if current != 1 || target != 10 {
		t.Errorf("size_matters progress = (%d,%d), want (1,10)", current, target)
	}
	if pct := ProgressPercent(current, target); pct != 10 {
		t.Errorf("size_matters percentage = %d, want 10", pct)
	}
}

func TestEvaluateMilestones(t *testing.T) {
	snap := stats.Snapshot{TotalBeers: 100}

	newly := Evaluate(snap, nil)
	got := make(map[string]bool)
	for _, def := range newly {
		got[def.ID] = true
	}

	for _, want := range []string{"first_beer", "beer_50", "beer_100"} {
		if !got[want] {
			t.Errorf("expected %s to unlock", want)
		}
	}
	for _, tooFar := range []string{"beer_500", "beer_1000"} {
		if got[tooFar] {
			t.Errorf("%s should not unlock at 100 beers", tooFar)
		}
	}
}

func TestEvaluateSkipsAlreadyUnlocked(t *testing.T) {
	snap := stats.Snapshot{TotalBeers: 100}
	already := map[string]bool{"first_beer": true, "beer_50": true}

	newly := Evaluate(snap, already)
	if len(newly) != 1 || newly[0].ID != "beer_100" {
		t.Errorf("Evaluate = %v, want [beer_100]", ids(newly))
	}
}

func TestEvaluateWeeklyStreak(t *testing.T) {
	snap := stats.Snapshot{ConsecutiveDays: 7}
	for _, def := range Evaluate(snap, nil) {
		if def.ID == "weekly_streak" {
			return
		}
	}
	t.Error("weekly_streak should unlock with 7 consecutive days")
}

func TestVolumeProgressInLitres(t *testing.T) {
	def, ok := Find("volume_10l")
	if !ok {
		t.Fatal("volume_10l not in catalog")
	}

	current, target := def.Progress(stats.Snapshot{TotalVolumeML: 4500})
	if current != 4 || target != 10 {
		t.Errorf("progress = (%d,%d), want (4,10)", current, target)
	}

	if !def.Unlocked(stats.Snapshot{TotalVolumeML: 10000}) {
		t.Error("10000ml should unlock volume_10l")
	}
	if def.Unlocked(stats.Snapshot{TotalVolumeML: 9999}) {
		t.Error("9999ml should not unlock volume_10l")
	}
}

func TestFlagAchievements(t *testing.T) {
	early, _ := Find("early_bird")
	night, _ := Find("night_owl")

	snap := stats.Snapshot{EarlyBird: true}
	if !early.Unlocked(snap) || night.Unlocked(snap) {
		t.Error("early_bird snapshot should unlock only early_bird")
	}

	current, target := night.Progress(stats.Snapshot{})
	if current != 0 || target != 1 {
		t.Errorf("locked flag progress = (%d,%d), want (0,1)", current, target)
	}
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		current, target, want int
	}{
		{0, 10, 0},
		{1, 10, 10},
		{5, 10, 50},
		{10, 10, 100},
		{15, 10, 100},
		{1, 3, 33},
		{2, 3, 67},
		{0, 0, 100},
	}
	for _, c := range cases {
		if got := ProgressPercent(c.current, c.target); got != c.want {
			t.Errorf("ProgressPercent(%d,%d) = %d, want %d", c.current, c.target, got, c.want)
		}
	}
}

func TestFindUnknown(t *testing.T) {
	if _, ok := Find("no_such_achievement"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestRepeatableBypassesUnlockedSet(t *testing.T) {
	def := Definition{
		ID: "daily_marathon", Category: CategoryPerformance, Kind: KindRepeatable,
		metric: maxDaily, target: 5,
	}

	snap := stats.Snapshot{MaxDaily: 6}
	if !def.Unlocked(snap) {
		t.Fatal("repeatable definition should unlock")
	}

	// Evaluate consults Kind before the already-unlocked set; a repeatable
	// entry present in the set must still come back.
	saved := catalog
	catalog = []Definition{def}
	byID = map[string]Definition{def.ID: def}
	defer func() {
		catalog = saved
		byID = make(map[string]Definition, len(saved))
		for _, d := range saved {
			byID[d.ID] = d
		}
	}()

	newly := Evaluate(snap, map[string]bool{"daily_marathon": true})
	if len(newly) != 1 || newly[0].ID != "daily_marathon" {
		t.Errorf("repeatable entry skipped: %v", ids(newly))
	}
}

func ids(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}
