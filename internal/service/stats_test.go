package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/edu-leads/internal/model"
)

func statLead(id string, st model.LeadStatus, at time.Time) model.Lead {
	return model.Lead{ID: id, Email: id + "@example.com", Status: st, Source: "website", CreatedAt: at, UpdatedAt: at}
}

func TestStatsToday(t *testing.T) {
	svc, store, _ := newLeadTest(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	store.put(statLead("a", model.StatusNew, now.Add(-time.Hour)))
	store.put(statLead("b", model.StatusContacted, now.Add(-14*time.Hour)))
	store.put(statLead("c", model.StatusNew, now.AddDate(0, 0, -1)))
	store.put(statLead("d", model.StatusEnrolled, now.AddDate(0, 0, -3)))
	store.put(statLead("e", model.StatusRejected, now.AddDate(0, -2, 0)))

	sum, err := svc.Stats(context.Background(), model.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, model.PeriodToday, sum.Period)
	assert.EqualValues(t, 2, sum.Total)
	assert.EqualValues(t, 1, sum.New)
	assert.EqualValues(t, 1, sum.Contacted)
	assert.Zero(t, sum.Enrolled)
	assert.Zero(t, sum.Rejected)

	all, err := svc.Stats(context.Background(), model.PeriodAll)
	require.NoError(t, err)
	assert.EqualValues(t, 5, all.Total)
	assert.Equal(t, all.Total, all.New+all.Contacted+all.Enrolled+all.Rejected)

	// The daily breakdown does not depend on the period.
	assert.Equal(t, all.DailyLeads, sum.DailyLeads)
	require.Len(t, sum.DailyLeads, 7)
	assert.Equal(t, "2026-03-04", sum.DailyLeads[0].Date)
	assert.Equal(t, "2026-03-10", sum.DailyLeads[6].Date)
	counts := make([]int64, 0, 7)
	for _, d := range sum.DailyLeads {
		counts = append(counts, d.Count)
	}
	assert.Equal(t, []int64{0, 0, 0, 1, 0, 1, 2}, counts)
}

func TestStatsWeekAndMonth(t *testing.T) {
	svc, store, _ := newLeadTest(t)
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	store.put(statLead("in-week", model.StatusNew, now.AddDate(0, 0, -6)))
	store.put(statLead("edge-week", model.StatusNew, now.AddDate(0, 0, -7)))
	store.put(statLead("in-month", model.StatusNew, time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)))
	store.put(statLead("before-month", model.StatusNew, time.Date(2026, 2, 28, 11, 59, 0, 0, time.UTC)))

	week, err := svc.Stats(context.Background(), model.PeriodWeek)
	require.NoError(t, err)
	assert.EqualValues(t, 2, week.Total)

	month, err := svc.Stats(context.Background(), model.PeriodMonth)
	require.NoError(t, err)
	assert.EqualValues(t, 3, month.Total)
}

func TestStatsRejectsUnknownPeriod(t *testing.T) {
	svc, _, _ := newLeadTest(t)

	_, err := svc.Stats(context.Background(), model.Period("year"))
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, model.PeriodAll, p)
	_, err = ParsePeriod("year")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestStatsEmptyStore(t *testing.T) {
	svc, _, _ := newLeadTest(t)

	sum, err := svc.Stats(context.Background(), model.PeriodAll)
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	require.Len(t, sum.DailyLeads, 7)
	for _, d := range sum.DailyLeads {
		assert.Zero(t, d.Count)
	}
}

func TestMonthBefore(t *testing.T) {
	cases := []struct{ in, want time.Time }{
		{time.Date(2026, 3, 31, 9, 15, 0, 0, time.UTC), time.Date(2026, 2, 28, 9, 15, 0, 0, time.UTC)},
		{time.Date(2028, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC), time.Date(2025, 12, 15, 8, 0, 0, 0, time.UTC)},
		{time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, monthBefore(tc.in), "monthBefore(%s)", tc.in)
	}
}

func TestDayWindowsAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2026-03-08 is the spring-forward day in New York.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, loc)
	days := dayWindows(now, 7)

	require.Len(t, days, 7)
	for i, d := range days {
		assert.Zero(t, d.start.Hour(), "window %d starts at midnight", i)
		if i > 0 {
			assert.Equal(t, days[i-1].end, d.start, "windows are contiguous")
		}
	}
	assert.Equal(t, "2026-03-04", days[0].date)
	assert.Equal(t, "2026-03-08", days[4].date)
	assert.Equal(t, 23*time.Hour, days[4].end.Sub(days[4].start))
	assert.Equal(t, 24*time.Hour, days[5].end.Sub(days[5].start))
}

func TestBucketByDayBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	days := dayWindows(now, 7)
	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	got := bucketByDay(days, []time.Time{
		midnight,
		midnight.Add(-time.Nanosecond),
		days[0].start.Add(-time.Second),
	})
	assert.EqualValues(t, 1, got[6].Count)
	assert.EqualValues(t, 1, got[5].Count)
	var total int64
	for _, d := range got {
		total += d.Count
	}
	assert.EqualValues(t, 2, total)
}
