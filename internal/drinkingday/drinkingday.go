package drinkingday

import "time"

// BoundaryHour is where one drinking day ends and the next begins.
// Beers logged between midnight and 05:00 count toward the previous day.
const BoundaryHour = 5

const DateLayout = "2006-01-02"

// DayStart returns the 05:00 timestamp opening the drinking day that
// contains at.
//
//	2026-01-31 23:00 -> 2026-01-31 05:00
//	2026-02-01 02:00 -> 2026-01-31 05:00
//	2026-02-01 06:00 -> 2026-02-01 05:00
func DayStart(at time.Time) time.Time {
	start := time.Date(at.Year(), at.Month(), at.Day(), BoundaryHour, 0, 0, 0, at.Location())
	if at.Hour() < BoundaryHour {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// DayEnd returns the start of the next drinking day. The drinking day is
// the half-open interval [DayStart, DayEnd).
func DayEnd(at time.Time) time.Time {
	return DayStart(at).AddDate(0, 0, 1)
}

// Date returns the YYYY-MM-DD label of the drinking day containing at.
// Always equals the date component of DayStart(at).
func Date(at time.Time) string {
	if at.Hour() < BoundaryHour {
		return at.AddDate(0, 0, -1).Format(DateLayout)
	}
	return at.Format(DateLayout)
}

// WeekStart returns Monday 05:00 of the drinking week containing at.
func WeekStart(at time.Time) time.Time {
	start := DayStart(at)
	offset := int(start.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return start.AddDate(0, 0, -offset)
}

// MonthStart returns the 1st of the month at 05:00 for the drinking day
// containing at.
func MonthStart(at time.Time) time.Time {
	start := DayStart(at)
	return time.Date(start.Year(), start.Month(), 1, BoundaryHour, 0, 0, 0, start.Location())
}

// NextMonthStart returns the 1st of the following month at 05:00.
func NextMonthStart(at time.Time) time.Time {
	return MonthStart(at).AddDate(0, 1, 0)
}

// IsLastDayOfMonth reports whether the calendar date of at is the last
// day of its month.
func IsLastDayOfMonth(at time.Time) bool {
	return at.AddDate(0, 0, 1).Day() == 1
}
