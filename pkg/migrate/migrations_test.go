package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/pricingdef/pkg/migrate"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPricingDefinitionsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_pricing_definitions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pricing_definitions",
		"tiers JSONB NOT NULL",
		"pricing_definitions_interval_complete",
		"CREATE INDEX IF NOT EXISTS idx_pricing_definitions_owner",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestQuoteSnapshotsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_quote_snapshots.sql")

	for _, sub := range []string{"CREATE TABLE IF NOT EXISTS quote_snapshots", "payload JSONB NOT NULL", "resource_id TEXT,"} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestRunAppliesMigrationsOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_run?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, migrate.Run(ctx, sqlDB, "sqlite3", "migrations", "up"))

	for _, table := range []string{"pricing_definitions", "quote_snapshots"} {
		require.True(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}

	require.NoError(t, migrate.Run(ctx, sqlDB, "sqlite3", "migrations", "reset"))
	require.False(t, conn.Migrator().HasTable("pricing_definitions"))
}

func TestRunRequiresDB(t *testing.T) {
	require.Error(t, migrate.Run(context.Background(), nil, "", "migrations", "up"))
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
