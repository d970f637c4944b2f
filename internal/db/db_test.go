package db

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(fmt.Errorf("timeout")))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"))
	for _, id := range []string{"", "42", "not-a-uuid", "4e7d4e5c-5cb9-4a3f-9f21", "'; DROP TABLE orders; --"} {
		assert.False(t, IsUUID(id), id)
	}
}
