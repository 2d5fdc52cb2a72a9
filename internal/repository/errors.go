// Package repository defines the MySQL-backed stores and the error values
// they share. Handlers never see these directly; the service layer
// translates them into its own error kinds.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when no row matches the requested ID or key.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique index, such as
// a second lead with the same normalized email.
var ErrDuplicate = errors.New("duplicate")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
