// Package usagestats aggregates raw traffic records into per-app usage
// breakdowns and daily chart series.
package usagestats

import (
	"time"

	"github.com/smartnet-labs/netscope/internal/models"
)

// DailyRanges splits the month at monthOffset from now into one range per
// calendar day, in epoch milliseconds. Ends are exclusive at millisecond
// precision: each day ends at the last millisecond before the next day
// starts, clipped to now. The current month (offset 0) stops at today;
// past months run through their natural last day.
func DailyRanges(now time.Time, loc *time.Location, monthOffset int) []models.DayRange {
	now = now.In(loc)

	year, month, _ := now.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, monthOffset, 0)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	// Last day to include: today for the current month, the month's final
	// day otherwise.
	last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)
	if !last.Before(todayStart) {
		last = todayStart
	}

	var ranges []models.DayRange
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		nextDay := day.AddDate(0, 0, 1)
		end := nextDay.Add(-time.Millisecond)
		if end.After(now) {
			end = now
		}
		ranges = append(ranges, models.DayRange{
			StartMillis: day.UnixMilli(),
			EndMillis:   end.UnixMilli(),
		})
	}
	return ranges
}

// RangeForPeriod returns the single query window for a usage period. Closed
// periods (yesterday) end at the last millisecond of their final day; open
// periods end at now.
func RangeForPeriod(now time.Time, loc *time.Location, period models.Period) models.DayRange {
	now = now.In(loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case models.PeriodToday:
		return models.DayRange{
			StartMillis: todayStart.UnixMilli(),
			EndMillis:   now.UnixMilli(),
		}

	case models.PeriodYesterday:
		yesterdayStart := todayStart.AddDate(0, 0, -1)
		return models.DayRange{
			StartMillis: yesterdayStart.UnixMilli(),
			EndMillis:   todayStart.Add(-time.Millisecond).UnixMilli(),
		}

	case models.PeriodThisWeek:
		// Week starts on Monday.
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		weekStart := todayStart.AddDate(0, 0, -(weekday - 1))
		return models.DayRange{
			StartMillis: weekStart.UnixMilli(),
			EndMillis:   now.UnixMilli(),
		}

	default: // models.PeriodThisMonth
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return models.DayRange{
			StartMillis: monthStart.UnixMilli(),
			EndMillis:   now.UnixMilli(),
		}
	}
}
