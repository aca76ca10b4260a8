package definitions

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgredis "github.com/angelmondragon/pricingdef/pkg/redis"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[key]
	if !ok {
		return "", pkgredis.ErrMiss
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	if m.err != nil {
		return m.err
	}
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryStore) DefinitionsKey(ownerType, ownerID string) string {
	return "pd:definitions:" + ownerType + ":" + ownerID
}

func TestRedisCacheRoundTrip(t *testing.T) {
	store := newMemoryStore()
	cache := NewRedisCache(store, 5*time.Minute)
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "42")

	_, hit, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.False(t, hit)

	defs := []Definition{{
		ID:        uuid.New(),
		OwnerType: owner.Type,
		OwnerID:   owner.ID,
		StartsAt:  datePtr("2015-01-01"),
		EndsAt:    datePtr("2015-01-31"),
		Weight:    20,
		Tiers:     openTiers(100),
	}}
	require.NoError(t, cache.Set(ctx, owner, defs))
	assert.Equal(t, 5*time.Minute, store.ttls["pd:definitions:tour:42"])

	got, hit, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, defs[0].ID, got[0].ID)
	assert.Equal(t, "2015-01-31", got[0].EndsAt.String())
	assert.JSONEq(t, string(defs[0].Tiers["1+"]), string(got[0].Tiers["1+"]))

	require.NoError(t, cache.Invalidate(ctx, owner))
	_, hit, err = cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCacheStoresEmptyLists(t *testing.T) {
	store := newMemoryStore()
	cache := NewRedisCache(store, time.Minute)
	owner := types.NewOwnerRef("tour", "empty")

	require.NoError(t, cache.Set(context.Background(), owner, nil))
	got, hit, err := cache.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, got)
}

func TestRedisCacheSurfacesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	cache := NewRedisCache(store, time.Minute)

	_, hit, err := cache.Get(context.Background(), types.NewOwnerRef("tour", "1"))
	assert.Error(t, err)
	assert.False(t, hit)

	store.err = nil
	store.values["pd:definitions:tour:1"] = "not json"
	_, hit, err = cache.Get(context.Background(), types.NewOwnerRef("tour", "1"))
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestNoopCache(t *testing.T) {
	cache := NoopCache()
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "1")

	require.NoError(t, cache.Set(ctx, owner, []Definition{{}}))
	_, hit, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, cache.Invalidate(ctx, owner))
}
