package ent

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/huynhanx03/go-crud/pkg/database"
)

const (
	mysqlDuplicateEntry = 1062
	pqUniqueViolation   = "23505"
)

// IsDuplicate reports whether err is a unique or primary key violation from any supported driver.
func IsDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// mapError translates driver errors into the database package sentinels.
func mapError(err error, op, table string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return database.ErrNotFound
	case IsDuplicate(err):
		return fmt.Errorf("%w: %s: %v", database.ErrDuplicateKey, table, err)
	default:
		return fmt.Errorf("ent: %s %s: %w", op, table, err)
	}
}
