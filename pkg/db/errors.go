package db

import "strings"

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// IsUniqueViolation reports whether the provided error references a unique
// constraint failure on either sqlite or postgres. When constraintName is
// provided, the helper looks for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
