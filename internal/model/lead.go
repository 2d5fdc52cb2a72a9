package model

import (
	"fmt"
	"strings"
	"time"
)

// LeadStatus is the follow-up state of a lead. Any status may move to any
// other; there is no enforced workflow.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusEnrolled  LeadStatus = "enrolled"
	StatusRejected  LeadStatus = "rejected"
)

// LeadStatuses lists every valid status in display order.
var LeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusEnrolled, StatusRejected}

// ParseLeadStatus returns the status named by s. Matching is exact after
// trimming; "New" is not a valid status.
func ParseLeadStatus(s string) (LeadStatus, error) {
	switch st := LeadStatus(strings.TrimSpace(s)); st {
	case StatusNew, StatusContacted, StatusEnrolled, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown lead status %q", s)
}

// Valid reports whether st is one of the four enumerated statuses.
func (st LeadStatus) Valid() bool {
	_, err := ParseLeadStatus(string(st))
	return err == nil
}

// DefaultLeadSource tags leads created through the public form.
const DefaultLeadSource = "website"

// Lead is a prospective student's contact submission. Email is stored
// normalized (trimmed, lower-cased) and is unique across all leads.
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Course    string     `json:"course"`
	Message   string     `json:"message"`
	Status    LeadStatus `json:"status"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NormalizeEmail trims and lower-cases an address; the result is the
// uniqueness key for leads.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LeadFilter narrows a lead listing. Nil pointers mean "no constraint".
// StartDate and EndDate are inclusive bounds on CreatedAt.
type LeadFilter struct {
	Status    *LeadStatus
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// Normalized returns a copy with page and limit clamped to their defaults
// and bounds.
func (f LeadFilter) Normalized() LeadFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Offset is the number of rows skipped before the current page.
func (f LeadFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// LeadPage is one page of a filtered, newest-first listing. Total and
// TotalPages describe the filtered set, not the whole table.
type LeadPage struct {
	Leads      []Lead `json:"leads"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"totalPages"`
	Page       int    `json:"currentPage"`
	Limit      int    `json:"limit"`
}

// TotalPages is ceil(total/limit); zero matches give zero pages.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
