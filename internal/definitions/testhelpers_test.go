package definitions

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const definitionsTable = `
CREATE TABLE IF NOT EXISTS pricing_definitions (
  id TEXT PRIMARY KEY,
  owner_type TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  starts_at TEXT,
  ends_at TEXT,
  weight INTEGER NOT NULL DEFAULT 0,
  tiers TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:definitions_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(definitionsTable).Error)
	return db
}

func datePtr(value string) *types.Date {
	d, err := types.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return &d
}

func fixedTier(amount int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"fixed":true,"prices":{"fixed":%d},"deposit":0}`, amount))
}

func openTiers(amount int64) tiers.RawTiers {
	return tiers.RawTiers{"1+": fixedTier(amount)}
}
