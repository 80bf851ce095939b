package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/arcanalab/tarot-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "nil error",
			input:    nil,
			expected: nil,
		},
		{
			name:     "no rows maps to not found",
			input:    sql.ErrNoRows,
			expected: store.ErrNotFound,
		},
		{
			name:     "unique violation maps to duplicate",
			input:    &pgconn.PgError{Code: uniqueViolationCode},
			expected: store.ErrDuplicate,
		},
		{
			name:     "foreign key violation maps to invalid entity",
			input:    &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "readings_owner_fk"},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "check violation maps to invalid entity",
			input:    &pgconn.PgError{Code: checkViolationCode, ConstraintName: "readings_status_check"},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation maps to invalid entity",
			input:    &pgconn.PgError{Code: notNullViolationCode, ColumnName: "question"},
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tc.input)
			if tc.expected == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.expected)
		})
	}
}

func TestMapErrorPassesUnknownErrorsThrough(t *testing.T) {
	t.Parallel()

	original := fmt.Errorf("connection reset")
	assert.Equal(t, original, MapError(original))
}

func TestMapErrorPreservesWrappedOriginal(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_openid_key"}
	mapped := MapError(fmt.Errorf("exec: %w", pgErr))

	assert.ErrorIs(t, mapped, store.ErrDuplicate)
	var unwrapped *pgconn.PgError
	assert.False(t, errors.As(mapped, &unwrapped),
		"driver error must not leak past the mapping")
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}
