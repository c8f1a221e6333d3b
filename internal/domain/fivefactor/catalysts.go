package fivefactor

import (
	"time"

	"insideredge/pkg/numeric"
)

// EarningsWeekDays is the horizon of an earnings week
const EarningsWeekDays = 7

// BuildCatalysts finds the nearest earnings report on or after today
func BuildCatalysts(rows []EarningsRow, now time.Time) *Catalysts {
	today := numeric.DateKey(now)

	var next *EarningsRow
	for i := range rows {
		r := rows[i]
		d, ok := numeric.ParseDate(r.ReportDate)
		if !ok {
			continue
		}
		key := numeric.DateKey(d)
		if key < today {
			continue
		}
		if next == nil || key < next.ReportDate {
			r.ReportDate = key
			next = &r
		}
	}
	if next == nil {
		return nil
	}

	days := numeric.CalendarDaysBetween(now, next.ReportDate)
	return &Catalysts{
		NextEarningsDate: next.ReportDate,
		ReportTime:       next.ReportTime,
		DaysToEarnings:   days,
		IsEarningsWeek:   days != nil && *days >= 0 && *days <= EarningsWeekDays,
		ExpectedMovePerc: next.ExpectedMovePerc,
	}
}
