package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/edu-leads/internal/model"
)

// AdminRepo is the credential store backed by the `admins` table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

const adminColumns = "id,username,email,password_hash,role,created_at,updated_at"

// Create inserts a fully populated admin. A clash on username or email
// returns ErrDuplicate.
func (r *AdminRepo) Create(ctx context.Context, a *model.Admin) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins ("+adminColumns+") VALUES (?,?,?,?,?,?,?)",
		a.ID, a.Username, a.Email, a.PasswordHash, a.Role, a.CreatedAt, a.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// GetByUsername fetches an admin by exact, case-sensitive username.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (model.Admin, error) {
	return scanAdmin(r.DB.QueryRowContext(ctx,
		"SELECT "+adminColumns+" FROM admins WHERE username=? LIMIT 1", username))
}

// ExistsByUsernameOrEmail reports whether either identifier is taken.
func (r *AdminRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM admins WHERE username=? OR email=?", username, email).Scan(&n)
	return n > 0, err
}

func scanAdmin(row *sql.Row) (model.Admin, error) {
	var a model.Admin
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Admin{}, ErrNotFound
	}
	return a, err
}
