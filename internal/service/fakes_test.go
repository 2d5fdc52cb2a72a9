package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/edu-leads/internal/model"
	"github.com/iliyamo/edu-leads/internal/queue"
	"github.com/iliyamo/edu-leads/internal/repository"
)

// memLeads is an in-memory LeadStore. The mutex makes Create's uniqueness
// check and insert one step, as the unique index does in MySQL.
type memLeads struct {
	mu    sync.Mutex
	byID  map[string]model.Lead
	err   error // returned by every call when set
	calls int
}

func newMemLeads() *memLeads { return &memLeads{byID: map[string]model.Lead{}} }

func (m *memLeads) Create(_ context.Context, l *model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	for _, other := range m.byID {
		if other.Email == l.Email {
			return repository.ErrDuplicate
		}
	}
	m.byID[l.ID] = *l
	return nil
}

func (m *memLeads) GetByID(_ context.Context, id string) (model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Lead{}, m.err
	}
	l, ok := m.byID[id]
	if !ok {
		return model.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (m *memLeads) matching(f model.LeadFilter) []model.Lead {
	var out []model.Lead
	for _, l := range m.byID {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if f.StartDate != nil && l.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && l.CreatedAt.After(*f.EndDate) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memLeads) List(_ context.Context, f model.LeadFilter) ([]model.Lead, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	all := m.matching(f)
	start := f.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return append([]model.Lead{}, all[start:end]...), int64(len(all)), nil
}

func (m *memLeads) UpdateStatus(_ context.Context, id string, st model.LeadStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	l, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status, l.UpdatedAt = st, at
	m.byID[id] = l
	return nil
}

func (m *memLeads) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memLeads) CountByStatus(_ context.Context, since *time.Time) (map[model.LeadStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := map[model.LeadStatus]int64{}
	for _, l := range m.byID {
		if since != nil && l.CreatedAt.Before(*since) {
			continue
		}
		out[l.Status]++
	}
	return out, nil
}

func (m *memLeads) CreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []time.Time
	for _, l := range m.byID {
		if !l.CreatedAt.Before(since) {
			out = append(out, l.CreatedAt)
		}
	}
	return out, nil
}

// put stores l directly, bypassing Submit, for seeding fixtures.
func (m *memLeads) put(l model.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[l.ID] = l
}

type memAdmins struct {
	mu     sync.Mutex
	admins []model.Admin
	err    error
}

func (m *memAdmins) Create(_ context.Context, a *model.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, o := range m.admins {
		if o.Username == a.Username || o.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	m.admins = append(m.admins, *a)
	return nil
}

func (m *memAdmins) GetByUsername(_ context.Context, username string) (model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Admin{}, m.err
	}
	for _, a := range m.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return model.Admin{}, repository.ErrNotFound
}

func (m *memAdmins) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, a := range m.admins {
		if a.Username == username || a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func (m *memRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.revoked == nil {
		m.revoked = map[string]time.Duration{}
	}
	m.revoked[id] = ttl
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[id]
	return ok, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.LeadSubmittedEvent
	err    error
}

func (p *recordingPublisher) PublishLeadSubmitted(_ context.Context, ev queue.LeadSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}
