package report

import (
	"time"

	"github.com/asesorix/modelo111/internal/domain"
)

// ParsePeriod normalizes a raw request value. An empty value means the user
// has not chosen yet and gets the first quarter; anything else is passed
// through untouched so that ResolveDates can apply its own fallback.
func ParsePeriod(raw string) domain.Period {
	if raw == "" {
		return domain.DefaultPeriod
	}
	return domain.Period(raw)
}

// ResolveDates maps a period onto a concrete date range within the calendar
// year of the fiscal year's start date. Unrecognized period codes resolve to
// the fourth quarter, mirroring the declaration form's historical behavior;
// there is no error path.
func ResolveDates(period domain.Period, exerciseStart time.Time) (start, end time.Time) {
	year := exerciseStart.Year()
	loc := exerciseStart.Location()

	switch period {
	case domain.PeriodT1:
		return date(year, time.January, 1, loc), date(year, time.March, 31, loc)
	case domain.PeriodT2:
		return date(year, time.April, 1, loc), date(year, time.June, 30, loc)
	case domain.PeriodT3:
		return date(year, time.July, 1, loc), date(year, time.September, 30, loc)
	case domain.PeriodAnnual:
		return date(year, time.January, 1, loc), date(year, time.December, 31, loc)
	default:
		return date(year, time.October, 1, loc), date(year, time.December, 31, loc)
	}
}

func date(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
