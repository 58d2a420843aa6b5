package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// The query layer is the single choke point for table access: malformed
// identifiers fail fast before any SQL runs, and driver errors are normalized
// into a small set of shapes that handlers can map to HTTP statuses.

// ErrNotFound is returned when a by-id lookup matches zero rows.
var ErrNotFound = errors.New("record not found")

// ValidationError reports malformed input caught before any statement was
// executed, such as an identifier that is not a well-formed UUID.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ColumnError reports a schema mismatch: a query referenced a column or table
// the live schema does not have. With schema init at startup this indicates a
// programming error rather than an operational hazard, but it is still kept
// distinct so it is never mistaken for bad user input.
type ColumnError struct {
	Err error
}

func (e *ColumnError) Error() string { return "schema mismatch: " + e.Err.Error() }
func (e *ColumnError) Unwrap() error { return e.Err }

// FormatError reports malformed stored data, such as an image list column
// that does not hold valid JSON.
type FormatError struct {
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Field, e.Err)
}
func (e *FormatError) Unwrap() error { return e.Err }

// CapacityError reports a registration attempt against a full meeting.
type CapacityError struct {
	MeetingID string
	Spots     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("meeting %s is full (%d spots)", e.MeetingID, e.Spots)
}

// ValidateID checks that the value is a well-formed UUID. It is called by
// every by-id query before the statement executes, so a bad identifier never
// reaches the database.
func ValidateID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return &ValidationError{Field: field, Reason: "must be a UUID"}
	}
	return nil
}

// ValidateOptionalID is ValidateID for nullable foreign keys: an empty value
// is allowed, anything else must be a well-formed UUID.
func ValidateOptionalID(field, value string) error {
	if value == "" {
		return nil
	}
	return ValidateID(field, value)
}

// classify maps a raw driver error into the taxonomy above. Every failure is
// reported to the caller; nothing is silently swallowed here.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "no such column") || strings.Contains(msg, "no such table") {
		return &ColumnError{Err: err}
	}
	return fmt.Errorf("database: %w", err)
}
