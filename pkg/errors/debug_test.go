package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCapturesChainAndCode(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeDependency, fmt.Errorf("dial tcp"), "load definitions"))

	d := Dump(err)
	assert.Equal(t, CodeDependency, d.Code)
	assert.True(t, d.Retryable)
	require.Len(t, d.Chain, 3)
	assert.Empty(t, d.PGCode)
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "pricing_definitions_pkey", TableName: "pricing_definitions"}
	d := Dump(Wrap(CodeInternal, pgxErr, "insert"))
	assert.Equal(t, "23505", d.PGCode)
	assert.Equal(t, "pricing_definitions_pkey", d.PGConstraint)
	assert.Equal(t, "pricing_definitions", d.PGTable)

	pqErr := &pq.Error{Code: "23503", Table: "quote_snapshots", Detail: "missing owner"}
	d = Dump(pqErr)
	assert.Equal(t, "23503", d.PGCode)
	assert.Equal(t, "missing owner", d.PGDetail)
	assert.Empty(t, d.Code)
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
