package model

import (
	"fmt"
	"strings"
)

// Period names the time window used to scope lead statistics.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod maps a query value to a Period. The empty string selects
// PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.TrimSpace(s)); p {
	case "":
		return PeriodAll, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// DailyCount is the number of leads created on one local calendar day.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// StatsSummary aggregates leads over a period. The per-status counts share
// the period's date filter; DailyLeads always covers the trailing seven
// days, oldest first.
type StatsSummary struct {
	Period     Period       `json:"period"`
	Total      int64        `json:"total"`
	New        int64        `json:"new"`
	Contacted  int64        `json:"contacted"`
	Enrolled   int64        `json:"enrolled"`
	Rejected   int64        `json:"rejected"`
	DailyLeads []DailyCount `json:"dailyLeads"`
}
