package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationCode    = "23505"
	mysqlDuplicateEntryError = 1062
)

// isUniqueConstraintError reports whether err is a uniqueness violation.
// Postgres and mysql leak typed driver errors through gorm; sqlite surfaces
// only through its message text ("UNIQUE constraint failed: ...").
func isUniqueConstraintError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return true
	case isPostgresUniqueViolation(err), isMySQLDuplicateEntry(err):
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

func isMySQLDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntryError
}
