package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/edu-leads/internal/model"
)

// LeadRepo is the lead store backed by the `leads` table. It is the only
// writer of lead rows.
type LeadRepo struct {
	DB *sql.DB
}

func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{DB: db} }

const leadColumns = "id,name,email,phone,course,message,status,source,created_at,updated_at"

// Create inserts a new lead. The unique index on email turns a concurrent
// or repeated submission of the same address into ErrDuplicate.
func (r *LeadRepo) Create(ctx context.Context, l *model.Lead) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO leads ("+leadColumns+") VALUES (?,?,?,?,?,?,?,?,?,?)",
		l.ID, l.Name, l.Email, l.Phone, l.Course, l.Message, string(l.Status), l.Source, l.CreatedAt, l.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a lead by id.
func (r *LeadRepo) GetByID(ctx context.Context, id string) (model.Lead, error) {
	l, err := scanLead(r.DB.QueryRowContext(ctx,
		"SELECT "+leadColumns+" FROM leads WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lead{}, ErrNotFound
	}
	return l, err
}

// List returns one page of leads matching f, newest first, along with the
// number of rows matching f across all pages. f must already be normalized.
func (r *LeadRepo) List(ctx context.Context, f model.LeadFilter) ([]model.Lead, int64, error) {
	where := []string{}
	args := []any{}
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.StartDate != nil {
		where = append(where, "created_at >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		where = append(where, "created_at <= ?")
		args = append(args, f.EndDate.UTC())
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Lead{}, 0, nil
	}

	dataSQL := "SELECT " + leadColumns + " FROM leads WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), f.Limit, f.Offset())

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Lead, 0, f.Limit)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStatus sets status and updated_at in a single statement. The
// row_version bump guarantees a matched row always counts as affected, so
// re-applying the current status still succeeds.
func (r *LeadRepo) UpdateStatus(ctx context.Context, id string, status model.LeadStatus, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE leads SET status=?, updated_at=?, row_version=row_version+1 WHERE id=?",
		string(status), at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes a lead.
func (r *LeadRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM leads WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus groups leads created at or after since (all leads when
// since is nil) by status. Statuses with no leads are absent from the map.
func (r *LeadRepo) CountByStatus(ctx context.Context, since *time.Time) (map[model.LeadStatus]int64, error) {
	query := "SELECT status, COUNT(*) FROM leads"
	args := []any{}
	if since != nil {
		query += " WHERE created_at >= ?"
		args = append(args, since.UTC())
	}
	query += " GROUP BY status"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.LeadStatus]int64, len(model.LeadStatuses))
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[model.LeadStatus(status)] = n
	}
	return counts, rows.Err()
}

// CreatedSince returns the creation time of every lead created at or after
// since. Callers bucket the timestamps themselves so day boundaries follow
// the service's time zone rather than the database session's.
func (r *LeadRepo) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT created_at FROM leads WHERE created_at >= ? ORDER BY created_at", since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (model.Lead, error) {
	var (
		l      model.Lead
		status string
	)
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Course, &l.Message,
		&status, &l.Source, &l.CreatedAt, &l.UpdatedAt)
	l.Status = model.LeadStatus(status)
	return l, err
}
