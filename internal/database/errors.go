package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation   = pq.ErrorCode("23505")
	mysqlDuplicateEntry = 1062
)

// IsUniqueViolation reports whether err is a unique constraint violation from PostgreSQL or MySQL.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	return false
}

// IsUniqueViolationOn reports whether err is a unique violation of the named
// index. PostgreSQL reports the index as the constraint; MySQL only names the
// key in the message, qualified by table name on 8.0.
func IsUniqueViolationOn(err error, index string) bool {
	if !IsUniqueViolation(err) {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint == index
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return strings.HasSuffix(mysqlErr.Message, "'"+index+"'") ||
			strings.HasSuffix(mysqlErr.Message, "."+index+"'")
	}
	return false
}
