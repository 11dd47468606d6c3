package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres or SQLite unique
// violation. When constraintName is set the message must mention it.
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
