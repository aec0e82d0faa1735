package org

import (
	"strings"
	"time"
)

// scanner is an interface over sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint
// violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nowRFC3339 returns the current UTC time formatted for storage.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseStored parses an RFC3339 timestamp read back from the database.
func parseStored(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck // format is controlled
	return t
}
