package definitions

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/metrics"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *setup.Registry {
	t.Helper()
	reg, err := setup.Build(setup.Document{
		Priceables: map[string]setup.Priceable{
			"tour": {Currency: setup.Literal("EUR"), Minimum: "min_guests"},
		},
	})
	require.NoError(t, err)
	return reg
}

type serviceFixture struct {
	svc   Service
	repo  *Repository
	store *memoryStore
	reg   *prometheus.Registry
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	store := newMemoryStore()
	promReg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Registry: testRegistry(t),
		Cache:    NewRedisCache(store, 0),
		Metrics:  metrics.NewQuoteMetrics(promReg),
	})
	require.NoError(t, err)
	return serviceFixture{svc: svc, repo: repo, store: store, reg: promReg}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchesLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchesLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
			return false
		}
	}
	return true
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Equal(t, pkgerrors.CodeConfig, pkgerrors.CodeOf(err))

	_, err = NewService(ServiceParams{Repo: NewRepository(newTestDB(t))})
	assert.Equal(t, pkgerrors.CodeConfig, pkgerrors.CodeOf(err))
}

func TestServiceCreateValidDefinition(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "42")

	def, err := f.svc.Create(ctx, owner, resource.Map{"min_guests": 2}, Input{
		Weight: 5,
		Tiers:  tiers.RawTiers{"2..5": fixedTier(100), "6+": fixedTier(90)},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, def.ID)
	assert.Equal(t, owner, def.Owner())

	defs, err := f.svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, def.ID, defs[0].ID)
}

func TestServiceListAvailable(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "42")
	selector := NewSelector(time.UTC)

	fallback := &Definition{OwnerType: owner.Type, OwnerID: owner.ID, Tiers: openTiers(100)}
	require.NoError(t, f.repo.Create(ctx, fallback))
	january := &Definition{OwnerType: owner.Type, OwnerID: owner.ID, StartsAt: datePtr("2015-01-01"), EndsAt: datePtr("2015-01-31"), Weight: 10, Tiers: openTiers(80)}
	require.NoError(t, f.repo.Create(ctx, january))

	defs, err := f.svc.ListAvailable(ctx, owner, types.NewDate(2015, 1, 15))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	picked, err := selector.Select(defs, types.NewDate(2015, 1, 15))
	require.NoError(t, err)
	require.NotNil(t, picked)
	assert.Equal(t, january.ID, picked.ID)

	defs, err = f.svc.ListAvailable(ctx, owner, types.NewDate(2015, 3, 1))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	picked, err = selector.Select(defs, types.NewDate(2015, 3, 1))
	require.NoError(t, err)
	require.NotNil(t, picked)
	assert.Equal(t, fallback.ID, picked.ID)

	_, err = f.svc.ListAvailable(ctx, types.NewOwnerRef("boat", "1"), types.NewDate(2015, 1, 15))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestServiceCreateRejectsInvalidDefinition(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "42")

	_, err := f.svc.Create(ctx, owner, resource.Map{}, Input{
		StartsAt: datePtr("2015-01-01"),
		Tiers:    tiers.RawTiers{"1..4": fixedTier(1), "4..9": fixedTier(2)},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	report, ok := typed.Details().(tiers.Report)
	require.True(t, ok)
	assert.Equal(t, []tiers.IssueKind{
		IssuePartialInterval,
		tiers.IssueOverlapping,
		tiers.IssueInsufficientHighestBoundary,
	}, report.Kinds())
	assert.Equal(t, []string{"1..4", "4..9"}, report.ErroneousRanges[tiers.IssueOverlapping])

	assert.Equal(t, float64(1), counterValue(t, f.reg, "tier_validation_issues_total", map[string]string{"kind": "overlapping"}))

	rows, err := f.repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceUsesPriceableMinimum(t *testing.T) {
	f := newServiceFixture(t)
	report, err := f.svc.Check(context.Background(), types.NewOwnerRef("tour", "1"), resource.Map{"min_guests": 3}, Input{
		Tiers: tiers.RawTiers{"1+": fixedTier(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []tiers.IssueKind{tiers.IssueInsufficientLowestBoundary}, report.Kinds())

	_, err = f.svc.Check(context.Background(), types.NewOwnerRef("tour", "1"), resource.Map{"min_guests": "three"}, Input{
		Tiers: tiers.RawTiers{"1+": fixedTier(1)},
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestServiceRejectsUnknownOwners(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, types.NewOwnerRef("boat", "1"))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.List(ctx, types.NewOwnerRef("tour", ""))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestServiceListUsesCache(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "42")

	_, err := f.svc.List(ctx, owner)
	require.NoError(t, err)
	_, err = f.svc.List(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, float64(1), counterValue(t, f.reg, "definitions_cache_lookups_total", map[string]string{"result": "miss"}))
	assert.Equal(t, float64(1), counterValue(t, f.reg, "definitions_cache_lookups_total", map[string]string{"result": "hit"}))

	_, err = f.svc.Create(ctx, owner, resource.Map{}, Input{Tiers: openTiers(100)})
	require.NoError(t, err)
	_, cached := f.store.values["pd:definitions:tour:42"]
	assert.False(t, cached, "writes invalidate the cached list")

	defs, err := f.svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

func TestServiceUpdateAndDelete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "42")

	def, err := f.svc.Create(ctx, owner, nil, Input{Tiers: openTiers(100)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, owner, def.ID, nil, Input{
		StartsAt: datePtr("2015-06-01"),
		EndsAt:   datePtr("2015-08-31"),
		Weight:   10,
		Tiers:    openTiers(150),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Weight)
	assert.False(t, updated.IsDefault())

	_, err = f.svc.Update(ctx, owner, uuid.New(), nil, Input{Tiers: openTiers(1)})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.Update(ctx, owner, def.ID, nil, Input{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	require.NoError(t, f.svc.Delete(ctx, owner, def.ID))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(f.svc.Delete(ctx, owner, def.ID)))
}

func TestServiceDeleteOwner(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := types.NewOwnerRef("tour", "42")

	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, owner, nil, Input{Weight: i, Tiers: openTiers(100)})
		require.NoError(t, err)
	}
	removed, err := f.svc.DeleteOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	defs, err := f.svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, defs)
}
