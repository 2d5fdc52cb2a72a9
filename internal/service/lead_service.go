package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/edu-leads/internal/logger"
	"github.com/iliyamo/edu-leads/internal/model"
	"github.com/iliyamo/edu-leads/internal/queue"
)

// LeadStore is the persistence contract LeadService relies on. Create must
// reject a second lead with the same email atomically.
type LeadStore interface {
	Create(ctx context.Context, l *model.Lead) error
	GetByID(ctx context.Context, id string) (model.Lead, error)
	List(ctx context.Context, f model.LeadFilter) ([]model.Lead, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.LeadStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, since *time.Time) (map[model.LeadStatus]int64, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// EventPublisher announces stored submissions to downstream consumers.
type EventPublisher interface {
	PublishLeadSubmitted(ctx context.Context, ev queue.LeadSubmittedEvent) error
}

// LeadService ingests public submissions and serves lead data to admins.
type LeadService struct {
	leads   LeadStore
	events  EventPublisher // nil disables publishing
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
}

// NewLeadService builds a LeadService. loc fixes the calendar used for
// day boundaries in statistics and date-only filters.
func NewLeadService(leads LeadStore, events EventPublisher, loc *time.Location, storeTimeout time.Duration) *LeadService {
	if loc == nil {
		loc = time.Local
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &LeadService{leads: leads, events: events, loc: loc, timeout: storeTimeout, now: time.Now}
}

// SubmitInput is a public lead form submission.
type SubmitInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Course  string `json:"course" validate:"max=120"`
	Message string `json:"message" validate:"max=2000"`
}

// Submit stores a new lead with status "new" and source "website". A
// second submission with the same normalized email fails with
// ErrDuplicateLead; the first one wins.
func (s *LeadService) Submit(ctx context.Context, in SubmitInput) (model.Lead, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = model.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Course = strings.TrimSpace(in.Course)
	in.Message = strings.TrimSpace(in.Message)
	if err := checkStruct(in); err != nil {
		return model.Lead{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	lead := model.Lead{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Course:    in.Course,
		Message:   in.Message,
		Status:    model.StatusNew,
		Source:    model.DefaultLeadSource,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dup := &Error{Kind: KindDuplicate, Reason: ErrDuplicateLead, Message: "a lead with this email already exists"}
	if err := translate("create lead", s.leads.Create(ctx, &lead), "", dup); err != nil {
		return model.Lead{}, err
	}
	logger.Log.WithFields(logrus.Fields{"lead_id": lead.ID, "course": lead.Course}).Info("lead submitted")
	s.publish(ctx, lead)
	return lead, nil
}

func (s *LeadService) publish(ctx context.Context, l model.Lead) {
	if s.events == nil {
		return
	}
	ev := queue.LeadSubmittedEvent{
		LeadID:      l.ID,
		Name:        l.Name,
		Email:       l.Email,
		Phone:       l.Phone,
		Course:      l.Course,
		Source:      l.Source,
		SubmittedAt: l.CreatedAt.Format(time.RFC3339),
	}
	if err := s.events.PublishLeadSubmitted(ctx, ev); err != nil {
		logger.Log.WithError(err).WithField("lead_id", l.ID).Warn("lead event not published")
	}
}

// LeadQuery holds the raw query-string values of a listing request.
type LeadQuery struct {
	Status    string
	StartDate string
	EndDate   string
	Page      string
	Limit     string
}

// ParseFilter validates q into a typed filter. Dates are either RFC 3339
// instants or YYYY-MM-DD days in the service time zone; a day-only end
// date covers that whole day. Unparseable page or limit values fall back
// to their defaults.
func (s *LeadService) ParseFilter(q LeadQuery) (model.LeadFilter, error) {
	var f model.LeadFilter
	if q.Status != "" {
		st, err := ParseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if q.StartDate != "" {
		t, _, err := s.parseDate(q.StartDate)
		if err != nil {
			return f, validationError(ErrInvalidField, "startDate must be YYYY-MM-DD or RFC 3339")
		}
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, dayOnly, err := s.parseDate(q.EndDate)
		if err != nil {
			return f, validationError(ErrInvalidField, "endDate must be YYYY-MM-DD or RFC 3339")
		}
		if dayOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		f.EndDate = &t
	}
	f.Page, _ = strconv.Atoi(strings.TrimSpace(q.Page))
	f.Limit, _ = strconv.Atoi(strings.TrimSpace(q.Limit))
	return f.Normalized(), nil
}

func (s *LeadService) parseDate(v string) (t time.Time, dayOnly bool, err error) {
	v = strings.TrimSpace(v)
	if t, err = time.ParseInLocation("2006-01-02", v, s.loc); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, v)
	return t, false, err
}

// ParseStatus maps a raw value onto the closed status set.
func ParseStatus(raw string) (model.LeadStatus, error) {
	st, err := model.ParseLeadStatus(raw)
	if err != nil {
		return "", validationError(ErrInvalidStatus, "status must be one of new, contacted, enrolled, rejected")
	}
	return st, nil
}

// List returns one newest-first page of leads matching f. Total and
// TotalPages are computed over the filtered set.
func (s *LeadService) List(ctx context.Context, f model.LeadFilter) (model.LeadPage, error) {
	if f.Status != nil && !f.Status.Valid() {
		return model.LeadPage{}, validationError(ErrInvalidStatus, "status must be one of new, contacted, enrolled, rejected")
	}
	f = f.Normalized()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	leads, total, err := s.leads.List(ctx, f)
	if err != nil {
		return model.LeadPage{}, storeError("list leads", err)
	}
	return model.LeadPage{
		Leads:      leads,
		Total:      total,
		TotalPages: model.TotalPages(total, f.Limit),
		Page:       f.Page,
		Limit:      f.Limit,
	}, nil
}

// UpdateStatus sets a lead's status. Re-applying the current status is not
// an error. On any failure the stored lead is unchanged.
func (s *LeadService) UpdateStatus(ctx context.Context, id, status string) (model.Lead, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return model.Lead{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Lead{}, notFoundError("lead not found")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	at := s.now().UTC().Truncate(time.Millisecond)
	if err := translate("update lead status", s.leads.UpdateStatus(ctx, id, st, at), "lead not found", nil); err != nil {
		return model.Lead{}, err
	}
	lead, err := s.leads.GetByID(ctx, id)
	if err := translate("load lead", err, "lead not found", nil); err != nil {
		return model.Lead{}, err
	}
	logger.Log.WithFields(logrus.Fields{"lead_id": id, "status": st}).Info("lead status updated")
	return lead, nil
}

// Delete permanently removes a lead.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return notFoundError("lead not found")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := translate("delete lead", s.leads.Delete(ctx, id), "lead not found", nil); err != nil {
		return err
	}
	logger.Log.WithField("lead_id", id).Info("lead deleted")
	return nil
}
