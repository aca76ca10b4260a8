package snapshots

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const snapshotsTable = `
CREATE TABLE IF NOT EXISTS quote_snapshots (
  id TEXT PRIMARY KEY,
  resource_type TEXT NOT NULL,
  resource_id TEXT,
  priceable_type TEXT NOT NULL,
  priceable_id TEXT NOT NULL,
  definition_id TEXT,
  overall_volume INTEGER NOT NULL,
  currency TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME
);`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:snapshots_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(snapshotsTable).Error)
	return db
}

func newSnapshot(resourceType, resourceID string, payload string) *Snapshot {
	definitionID := uuid.New()
	return &Snapshot{
		ResourceType:  resourceType,
		ResourceID:    &resourceID,
		PriceableType: "tour",
		PriceableID:   "7",
		DefinitionID:  &definitionID,
		OverallVolume: 3,
		Currency:      "EUR",
		Payload:       Document(payload),
	}
}

func TestRepositorySaveAndFind(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	snapshot := newSnapshot("booking", "b-1", `{"pricing":{"fixed":true}}`)
	require.NoError(t, repo.Save(ctx, snapshot))
	require.NotEqual(t, uuid.Nil, snapshot.ID)

	found, err := repo.FindByID(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pricing":{"fixed":true}}`, string(found.Payload))
	require.NotNil(t, found.DefinitionID)
	assert.Equal(t, *snapshot.DefinitionID, *found.DefinitionID)

	ref, ok := found.Resource()
	require.True(t, ok)
	assert.Equal(t, types.NewOwnerRef("booking", "b-1"), ref)
}

func TestRepositoryListAndDetach(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	ref := types.NewOwnerRef("booking", "b-1")

	first := newSnapshot("booking", "b-1", `{"n":1}`)
	require.NoError(t, repo.Save(ctx, first))
	time.Sleep(2 * time.Millisecond)
	second := newSnapshot("booking", "b-1", `{"n":2}`)
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, newSnapshot("booking", "b-2", `{"n":3}`)))
	require.NoError(t, repo.Save(ctx, newSnapshot("transfer", "b-1", `{"n":4}`)))

	rows, err := repo.ListByResource(ctx, ref)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)

	detached, err := repo.Detach(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detached)

	rows, err = repo.ListByResource(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, rows)

	kept, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ResourceID)
	_, ok := kept.Resource()
	assert.False(t, ok)
	assert.JSONEq(t, `{"n":1}`, string(kept.Payload))

	others, err := repo.ListByResource(ctx, types.NewOwnerRef("transfer", "b-1"))
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestServiceWrapsRepositoryErrors(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Equal(t, pkgerrors.CodeConfig, pkgerrors.CodeOf(err))

	svc, err := NewService(ServiceParams{Repo: NewRepository(newTestDB(t))})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Get(ctx, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.List(ctx, types.NewOwnerRef("booking", ""))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.Detach(ctx, types.OwnerRef{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(svc.Save(ctx, nil)))
}

func TestServiceDetachKeepsPayload(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: NewRepository(newTestDB(t))})
	require.NoError(t, err)
	ctx := context.Background()

	snapshot := newSnapshot("booking", "b-9", `{"pricing":{}}`)
	require.NoError(t, svc.Save(ctx, snapshot))

	detached, err := svc.Detach(ctx, types.NewOwnerRef("booking", "b-9"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), detached)

	got, err := svc.Get(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResourceID)
}

func TestDocumentJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Payload Document `json:"payload"`
		Empty   Document `json:"empty"`
	}{Payload: Document(`{"a":1}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":{"a":1},"empty":null}`, string(out))

	var decoded struct {
		Payload Document `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"payload":{"b":[1,2]}}`), &decoded))
	assert.JSONEq(t, `{"b":[1,2]}`, string(decoded.Payload))
}
