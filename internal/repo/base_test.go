package repo

import (
	"context"
	"testing"

	"github.com/angelmondragon/pricingdef/pkg/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repobase?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil || withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseWithTx(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if got := base.WithTx(nil); got.db != db {
		t.Fatalf("expected nil tx to keep the connection")
	}
	tx := db.Session(&gorm.Session{})
	if got := base.WithTx(tx); got.db != tx {
		t.Fatalf("expected tx to replace the connection")
	}
}

func TestOwnedByScopesOnPolymorphicColumns(t *testing.T) {
	db := newTestDB(t)
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS owned_rows (id INTEGER PRIMARY KEY, owner_type TEXT, owner_id TEXT)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := db.Exec(`INSERT INTO owned_rows (id, owner_type, owner_id) VALUES (1, 'tour', '1'), (2, 'tour', '2'), (3, 'boat', '1')`).Error; err != nil {
		t.Fatalf("seed rows: %v", err)
	}

	var ids []int
	err := db.Table("owned_rows").Scopes(OwnedBy("owner", types.NewOwnerRef("tour", "1"))).Pluck("id", &ids).Error
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only row 1, got %v", ids)
	}
}
