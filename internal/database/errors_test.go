package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("id", "0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55"))

	tests := []string{
		"",
		"not-a-uuid",
		"12345",
		"0b906e8a-8d3c-4a1e-9c0f", // truncated
		"'; DROP TABLE users; --",
	}
	for _, value := range tests {
		err := ValidateID("user id", value)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "value %q", value)
		assert.Equal(t, "user id", validationErr.Field)
	}
}

func TestValidateOptionalID(t *testing.T) {
	assert.NoError(t, ValidateOptionalID("project id", ""))
	assert.NoError(t, ValidateOptionalID("project id", "0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55"))
	assert.Error(t, ValidateOptionalID("project id", "garbage"))
}

// A malformed identifier must be rejected before any statement executes. The
// nil handle proves it: touching the database here would panic.
func TestBadIDNeverReachesDatabase(t *testing.T) {
	svc := &Service{}
	ctx := context.Background()

	_, err := svc.GetUserByID(ctx, nil, "not-a-uuid")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.GetReviewByID(ctx, nil, "")
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.GetCollectionItem(ctx, nil, TableProjects, "also-bad")
	assert.ErrorAs(t, err, &validationErr)

	err = svc.MarkNotificationRead(ctx, nil, "nope")
	assert.ErrorAs(t, err, &validationErr)
}

func TestUnknownCollectionTableRejected(t *testing.T) {
	svc := &Service{}
	ctx := context.Background()

	_, _, err := svc.ListCollection(ctx, nil, "users", CollectionFilter{}, 10, 0)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "table", validationErr.Field)

	_, err = svc.GetCollectionItem(ctx, nil, "reviews; --", "0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55")
	assert.ErrorAs(t, err, &validationErr)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(sql.ErrNoRows), ErrNotFound)

	var columnErr *ColumnError
	assert.ErrorAs(t, classify(errors.New("SQL logic error: no such column: foo")), &columnErr)
	assert.ErrorAs(t, classify(errors.New("SQL logic error: no such table: gallery")), &columnErr)

	wrapped := classify(fmt.Errorf("disk I/O error"))
	assert.Error(t, wrapped)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
}
