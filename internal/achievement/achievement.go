package achievement

import (
	"time"

	"github.com/google/uuid"

	"pivoLogAPI/internal/stats"
)

type Category string

const (
	CategoryMilestones  Category = "milestones"
	CategoryVolume      Category = "volume"
	CategoryVariety     Category = "variety"
	CategoryTime        Category = "time"
	CategoryPerformance Category = "performance"
	CategorySpecial     Category = "special"
)

// Kind controls whether an achievement can unlock more than once.
type Kind string

const (
	KindOneTime    Kind = "one_time"
	KindRepeatable Kind = "repeatable"
)

// Definition is one catalog entry. The unlock rule is data, not code:
// metric extracts the relevant snapshot value, target is the raw threshold
// and displayScale converts raw units for progress display (millilitres to
// litres for the volume category, 1 everywhere else).
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	Kind        Kind     `json:"kind"`

	metric       func(stats.Snapshot) int
	target       int
	displayScale int
}

// Unlocked reports whether the snapshot crosses this entry's threshold.
// Monotonic: once a stat crosses the target it cannot uncross by logging
// more entries.
func (d Definition) Unlocked(snap stats.Snapshot) bool {
	return d.metric(snap) >= d.target
}

// Progress returns (current, target) in display units, current capped at
// target.
func (d Definition) Progress(snap stats.Snapshot) (int, int) {
	current := d.metric(snap)
	if current > d.target {
		current = d.target
	}
	scale := d.displayScale
	if scale == 0 {
		scale = 1
	}
	return current / scale, d.target / scale
}

// ProgressPercent is min(100, round(current/target*100)), or 100 when the
// target is zero.
func ProgressPercent(current, target int) int {
	if target <= 0 {
		return 100
	}
	pct := (current*100 + target/2) / target
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Evaluate returns catalog entries newly crossed by snap, in catalog
// order, skipping ids already unlocked (repeatable entries are never
// skipped). Predicates never fail; an empty snapshot just unlocks nothing.
func Evaluate(snap stats.Snapshot, alreadyUnlocked map[string]bool) []Definition {
	var newly []Definition
	for _, def := range Catalog() {
		if def.Kind != KindRepeatable && alreadyUnlocked[def.ID] {
			continue
		}
		if def.Unlocked(snap) {
			newly = append(newly, def)
		}
	}
	return newly
}

// UserAchievement is the persisted unlock fact. TimesUnlocked stays 1 for
// one-time achievements and counts repeat unlocks for repeatable ones.
type UserAchievement struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
	TimesUnlocked int       `json:"times_unlocked" db:"times_unlocked"`
}

type WithStatus struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	Unlocked    bool     `json:"unlocked"`
	Progress    int      `json:"progress"`
	Target      int      `json:"target"`
	Percentage  int      `json:"percentage"`
}

type Summary struct {
	Total      int          `json:"total"`
	Unlocked   int          `json:"unlocked"`
	Percentage int          `json:"percentage"`
	Recent     []WithStatus `json:"recent"`
}
