package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	pgUniqueViolation        = "23505"
	mysqlDuplicateEntry      = 1062
	sqliteConstraintPK       = 1555
	sqliteConstraintUnique   = 2067
	sqliteUniqueFailedPrefix = "UNIQUE constraint failed"
)

// sqliteCoder matches the error type of the sqlite driver without importing it.
type sqliteCoder interface {
	Code() int
}

// IsUniqueViolation reports whether err was raised by the storage engine
// rejecting a row that breaks a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	var liteErr sqliteCoder
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqliteConstraintUnique, sqliteConstraintPK:
			return true
		}
	}

	return strings.Contains(err.Error(), sqliteUniqueFailedPrefix)
}
