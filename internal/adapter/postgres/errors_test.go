package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/leobook/canondict/internal/domain"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"undefined column", &pgconn.PgError{Code: "42703"}, domain.ErrSchemaMismatch},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, domain.ErrSchemaMismatch},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tt.err, "entities", "x")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}
}

func TestMapErrorPassesThroughUnknown(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("broken pipe")
	got := MapError(base, "entities", "x")
	assert.ErrorContains(t, got, "broken pipe")
	assert.False(t, errors.Is(got, domain.ErrSchemaMismatch))
}

func TestUndefinedColumn(t *testing.T) {
	t.Parallel()

	col, ok := UndefinedColumn(&pgconn.PgError{
		Code:    "42703",
		Message: `column "updated_at" of relation "entities" does not exist`,
	})
	assert.True(t, ok)
	assert.Equal(t, "updated_at", col)

	_, ok = UndefinedColumn(&pgconn.PgError{Code: "23505"})
	assert.False(t, ok)

	_, ok = UndefinedColumn(fmt.Errorf("plain error"))
	assert.False(t, ok)
}
