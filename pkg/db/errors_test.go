package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestIsCheckViolation(t *testing.T) {
	pgxErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514", ConstraintName: "pricing_definitions_interval_ordered"})
	if !IsCheckViolation(pgxErr, "pricing_definitions_interval_ordered") {
		t.Fatalf("expected pgx check violation to match")
	}
	if IsCheckViolation(pgxErr, "other_constraint") {
		t.Fatalf("expected constraint name to be compared")
	}

	pqErr := &pq.Error{Code: "23514", Constraint: "pricing_definitions_interval_complete"}
	if !IsCheckViolation(pqErr, "") {
		t.Fatalf("expected pq check violation to match")
	}
	if IsCheckViolation(&pq.Error{Code: "23505"}, "") {
		t.Fatalf("unique violation is not a check violation")
	}
	if IsCheckViolation(errors.New("boom"), "") || IsCheckViolation(nil, "") {
		t.Fatalf("unexpected match")
	}
}

func TestIsCheckViolationSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:dbchecks?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.Exec(`CREATE TABLE IF NOT EXISTS windows (
  starts_at TEXT,
  ends_at TEXT,
  CONSTRAINT windows_ordered CHECK (starts_at IS NULL OR starts_at <= ends_at)
)`).Error; err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	err = conn.Exec(`INSERT INTO windows (starts_at, ends_at) VALUES ('2015-02-01', '2015-01-01')`).Error
	if !IsCheckViolation(err, "windows_ordered") {
		t.Fatalf("expected check violation, got %v", err)
	}
}
