package stats

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"pivoLogAPI/internal/drinkingday"
)

// Event is one consumption row as fetched for a user. Brewery is resolved
// from the beer catalog at query time; both are nil for custom entries.
type Event struct {
	Quantity   int
	VolumeML   int
	ConsumedAt time.Time
	BeerID     *uuid.UUID
	Brewery    *string
}

// Snapshot aggregates a user's full entry history. Computed per request,
// never persisted.
type Snapshot struct {
	TotalBeers      int  `json:"total_beers"`
	TotalVolumeML   int  `json:"total_volume_ml"`
	UniqueBeers     int  `json:"unique_beers"`
	UniqueBreweries int  `json:"unique_breweries"`
	LargeBeers      int  `json:"large_beers"`
	SmallBeers      int  `json:"small_beers"`
	WeekendBeers    int  `json:"weekend_beers"`
	MaxLoyal        int  `json:"max_loyal"`
	MaxDaily        int  `json:"max_daily"`
	ConsecutiveDays int  `json:"consecutive_days"`
	DaysWith5Beers  int  `json:"days_with_5_beers"`
	DaysWith10Beers int  `json:"days_with_10_beers"`
	EarlyBird       bool `json:"early_bird"`
	NightOwl        bool `json:"night_owl"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

const (
	largeVolumeML = 500
	smallVolumeML = 330
)

// Aggregate reduces a user's events into a Snapshot. The input order does
// not matter; an empty slice yields the zero snapshot.
func Aggregate(events []Event) Snapshot {
	var snap Snapshot
	daily := make(map[string]int)
	loyalty := make(map[uuid.UUID]int)
	breweries := make(map[string]bool)

	for _, e := range events {
		snap.TotalBeers += e.Quantity
		snap.TotalVolumeML += e.Quantity * e.VolumeML

		if e.VolumeML >= largeVolumeML {
			snap.LargeBeers += e.Quantity
		}
		if e.VolumeML <= smallVolumeML {
			snap.SmallBeers += e.Quantity
		}

		if e.BeerID != nil {
			loyalty[*e.BeerID] += e.Quantity
		}
		if e.Brewery != nil && *e.Brewery != "" {
			breweries[*e.Brewery] = true
		}

		date := drinkingday.Date(e.ConsumedAt)
		daily[date] += e.Quantity

		day, _ := time.Parse(drinkingday.DateLayout, date)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			snap.WeekendBeers += e.Quantity
		}

		hour := e.ConsumedAt.Hour()
		if hour >= drinkingday.BoundaryHour && hour < 10 {
			snap.EarlyBird = true
		}
		if hour < drinkingday.BoundaryHour {
			snap.NightOwl = true
		}
	}

	snap.UniqueBeers = len(loyalty)
	snap.UniqueBreweries = len(breweries)

	for _, count := range loyalty {
		if count > snap.MaxLoyal {
			snap.MaxLoyal = count
		}
	}

	for _, count := range daily {
		if count > snap.MaxDaily {
			snap.MaxDaily = count
		}
		if count >= 5 {
			snap.DaysWith5Beers++
		}
		if count >= 10 {
			snap.DaysWith10Beers++
		}
	}

	snap.ConsecutiveDays = longestStreak(sortedDates(daily))

	return snap
}

// DailyCounts groups quantities by drinking date, sorted ascending.
func DailyCounts(events []Event) []DailyCount {
	daily := make(map[string]int)
	for _, e := range events {
		daily[drinkingday.Date(e.ConsumedAt)] += e.Quantity
	}

	result := make([]DailyCount, 0, len(daily))
	for _, date := range sortedDates(daily) {
		result = append(result, DailyCount{Date: date, Count: daily[date]})
	}
	return result
}

// AveragePerDay is total quantity divided by distinct drinking days,
// rounded to one decimal. Zero days means zero, not a division error.
func AveragePerDay(events []Event) float64 {
	daily := make(map[string]int)
	total := 0
	for _, e := range events {
		daily[drinkingday.Date(e.ConsumedAt)] += e.Quantity
		total += e.Quantity
	}

	if len(daily) == 0 {
		return 0
	}
	avg := float64(total) / float64(len(daily))
	return float64(int(avg*10+0.5)) / 10
}

// CurrentStreak counts consecutive drinking days ending at now's drinking
// day. A user who has not logged anything today has streak 0.
func CurrentStreak(events []Event, now time.Time) int {
	seen := make(map[string]bool)
	for _, e := range events {
		seen[drinkingday.Date(e.ConsumedAt)] = true
	}

	streak := 0
	day, _ := time.Parse(drinkingday.DateLayout, drinkingday.Date(now))
	for seen[day.Format(drinkingday.DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func sortedDates(daily map[string]int) []string {
	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// longestStreak returns the longest run of dates exactly one calendar day
// apart. Dates must be sorted ascending.
func longestStreak(dates []string) int {
	if len(dates) == 0 {
		return 0
	}

	longest, current := 1, 1
	prev, _ := time.Parse(drinkingday.DateLayout, dates[0])

	for _, dateStr := range dates[1:] {
		curr, _ := time.Parse(drinkingday.DateLayout, dateStr)
		if curr.Sub(prev) == 24*time.Hour {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
		prev = curr
	}

	return longest
}
