package service

import (
	"context"
	"time"

	"github.com/iliyamo/edu-leads/internal/model"
)

// trailingDays is the length of the daily breakdown in StatsSummary.
const trailingDays = 7

// ParsePeriod maps a raw query value onto a period; empty means all.
func ParsePeriod(raw string) (model.Period, error) {
	p, err := model.ParsePeriod(raw)
	if err != nil {
		return "", validationError(ErrInvalidPeriod, "period must be one of today, week, month, all")
	}
	return p, nil
}

// Stats counts leads per status over period and, independently of period,
// per local calendar day over the trailing seven days.
func (s *LeadService) Stats(ctx context.Context, period model.Period) (model.StatsSummary, error) {
	now := s.now().In(s.loc)
	since, err := periodStart(period, now)
	if err != nil {
		return model.StatsSummary{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	counts, err := s.leads.CountByStatus(ctx, since)
	if err != nil {
		return model.StatsSummary{}, storeError("count leads", err)
	}
	days := dayWindows(now, trailingDays)
	stamps, err := s.leads.CreatedSince(ctx, days[0].start)
	if err != nil {
		return model.StatsSummary{}, storeError("load recent leads", err)
	}

	sum := model.StatsSummary{
		Period:     period,
		New:        counts[model.StatusNew],
		Contacted:  counts[model.StatusContacted],
		Enrolled:   counts[model.StatusEnrolled],
		Rejected:   counts[model.StatusRejected],
		DailyLeads: bucketByDay(days, stamps),
	}
	sum.Total = sum.New + sum.Contacted + sum.Enrolled + sum.Rejected
	return sum, nil
}

// periodStart returns the inclusive lower bound on createdAt for p, or nil
// for PeriodAll. now must already be in the service time zone.
func periodStart(p model.Period, now time.Time) (*time.Time, error) {
	var t time.Time
	switch p {
	case model.PeriodToday:
		t = startOfDay(now)
	case model.PeriodWeek:
		t = now.AddDate(0, 0, -7)
	case model.PeriodMonth:
		t = monthBefore(now)
	case model.PeriodAll:
		return nil, nil
	default:
		return nil, validationError(ErrInvalidPeriod, "period must be one of today, week, month, all")
	}
	return &t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// monthBefore steps back one calendar month keeping the wall clock. Days
// past the end of the earlier month clamp to its last day, so March 31
// maps to February 28 (or 29) rather than overflowing into March.
func monthBefore(t time.Time) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-1, 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type dayWindow struct {
	date       string
	start, end time.Time // [start, end)
}

// dayWindows returns n consecutive local days ending with now's day,
// oldest first. Every boundary is derived from one immutable midnight by
// calendar offset, so DST days are 23 or 25 hours long as they should be.
func dayWindows(now time.Time, n int) []dayWindow {
	base := startOfDay(now)
	out := make([]dayWindow, n)
	for i := range out {
		offset := n - 1 - i
		start := base.AddDate(0, 0, -offset)
		out[i] = dayWindow{
			date:  start.Format("2006-01-02"),
			start: start,
			end:   base.AddDate(0, 0, -offset+1),
		}
	}
	return out
}

// bucketByDay counts stamps per window. Stamps outside every window are
// ignored.
func bucketByDay(days []dayWindow, stamps []time.Time) []model.DailyCount {
	out := make([]model.DailyCount, len(days))
	for i, d := range days {
		out[i].Date = d.date
	}
	for _, ts := range stamps {
		for i, d := range days {
			if !ts.Before(d.start) && ts.Before(d.end) {
				out[i].Count++
				break
			}
		}
	}
	return out
}
