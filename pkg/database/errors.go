package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// IsForeignKeyViolation trả true nếu err là foreign_key_violation (23503)
func IsForeignKeyViolation(err error) bool {
	return hasPgCode(err, pgForeignKeyViolation)
}

// IsUniqueViolation trả true nếu err là unique_violation (23505)
func IsUniqueViolation(err error) bool {
	return hasPgCode(err, pgUniqueViolation)
}

// ConstraintName trả tên constraint bị vi phạm (rỗng nếu không phải PgError)
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
