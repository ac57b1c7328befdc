package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/asesorix/modelo111/internal/domain"
	"github.com/asesorix/modelo111/internal/report"
)

var exerciseStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestResolveDates_Quarters(t *testing.T) {
	for _, tc := range []struct {
		period     domain.Period
		start, end string
	}{
		{domain.PeriodT1, "2025-01-01", "2025-03-31"},
		{domain.PeriodT2, "2025-04-01", "2025-06-30"},
		{domain.PeriodT3, "2025-07-01", "2025-09-30"},
		{domain.PeriodT4, "2025-10-01", "2025-12-31"},
		{domain.PeriodAnnual, "2025-01-01", "2025-12-31"},
	} {
		start, end := report.ResolveDates(tc.period, exerciseStart)
		assert.Equal(t, tc.start, start.Format("2006-01-02"), "period %s start", tc.period)
		assert.Equal(t, tc.end, end.Format("2006-01-02"), "period %s end", tc.period)
	}
}

// Unrecognized codes resolve to the fourth quarter rather than failing.
func TestResolveDates_UnknownFallsBackToT4(t *testing.T) {
	start, end := report.ResolveDates(domain.Period("bogus"), exerciseStart)
	assert.Equal(t, "2025-10-01", start.Format("2006-01-02"))
	assert.Equal(t, "2025-12-31", end.Format("2006-01-02"))
}

// The four quarters are mutually exclusive and cover the year exactly; the
// annual period spans their union.
func TestResolveDates_QuartersTileTheYear(t *testing.T) {
	quarters := []domain.Period{domain.PeriodT1, domain.PeriodT2, domain.PeriodT3, domain.PeriodT4}

	prevEnd := exerciseStart.AddDate(0, 0, -1)
	for _, q := range quarters {
		start, end := report.ResolveDates(q, exerciseStart)
		assert.True(t, start.Before(end) || start.Equal(end), "%s: start after end", q)
		assert.Equal(t, exerciseStart.Year(), start.Year())
		assert.Equal(t, exerciseStart.Year(), end.Year())
		assert.Equal(t, prevEnd.AddDate(0, 0, 1), start, "%s does not follow previous quarter", q)
		prevEnd = end
	}

	annualStart, annualEnd := report.ResolveDates(domain.PeriodAnnual, exerciseStart)
	t1Start, _ := report.ResolveDates(domain.PeriodT1, exerciseStart)
	assert.Equal(t, t1Start, annualStart)
	assert.Equal(t, prevEnd, annualEnd)
}

func TestResolveDates_FollowsExerciseYear(t *testing.T) {
	start, end := report.ResolveDates(domain.PeriodT1, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2023, start.Year())
	assert.Equal(t, 2023, end.Year())
}

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, domain.PeriodT1, report.ParsePeriod(""))
	assert.Equal(t, domain.PeriodT3, report.ParsePeriod("T3"))
	assert.Equal(t, domain.Period("junk"), report.ParsePeriod("junk"))
}
