package definitions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgredis "github.com/angelmondragon/pricingdef/pkg/redis"
	"github.com/angelmondragon/pricingdef/pkg/types"
)

// Cache keeps the full definition list of a priceable.
type Cache interface {
	Get(ctx context.Context, owner types.OwnerRef) ([]Definition, bool, error)
	Set(ctx context.Context, owner types.OwnerRef, defs []Definition) error
	Invalidate(ctx context.Context, owner types.OwnerRef) error
}

type keyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DefinitionsKey(ownerType, ownerID string) string
}

type redisCache struct {
	store keyValueStore
	ttl   time.Duration
}

// NewRedisCache stores definition lists as JSON under the priceable's key.
func NewRedisCache(store keyValueStore, ttl time.Duration) Cache {
	return &redisCache{store: store, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, owner types.OwnerRef) ([]Definition, bool, error) {
	raw, err := c.store.Get(ctx, c.store.DefinitionsKey(owner.Type, owner.ID))
	if errors.Is(err, pkgredis.ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var defs []Definition
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		return nil, false, err
	}
	return defs, true, nil
}

func (c *redisCache) Set(ctx context.Context, owner types.OwnerRef, defs []Definition) error {
	if defs == nil {
		defs = []Definition{}
	}
	payload, err := json.Marshal(defs)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.DefinitionsKey(owner.Type, owner.ID), payload, c.ttl)
}

func (c *redisCache) Invalidate(ctx context.Context, owner types.OwnerRef) error {
	return c.store.Del(ctx, c.store.DefinitionsKey(owner.Type, owner.ID))
}

type noopCache struct{}

// NoopCache never hits. Used when redis is not configured.
func NoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, types.OwnerRef) ([]Definition, bool, error) {
	return nil, false, nil
}

func (noopCache) Set(context.Context, types.OwnerRef, []Definition) error {
	return nil
}

func (noopCache) Invalidate(context.Context, types.OwnerRef) error {
	return nil
}
