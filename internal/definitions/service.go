package definitions

import (
	"context"
	"errors"

	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/db"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/logger"
	"github.com/angelmondragon/pricingdef/pkg/metrics"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Input carries the editable fields of a definition.
type Input struct {
	StartsAt *types.Date    `json:"starts_at"`
	EndsAt   *types.Date    `json:"ends_at"`
	Weight   int            `json:"weight"`
	Tiers    tiers.RawTiers `json:"tiers"`
}

// ServiceParams groups dependencies for the definitions service.
type ServiceParams struct {
	Repo     *Repository
	Registry *setup.Registry
	Cache    Cache
	Metrics  *metrics.QuoteMetrics
	Logger   *logger.Logger
}

// Service manages the definitions owned by priceables.
type Service interface {
	List(ctx context.Context, owner types.OwnerRef) ([]Definition, error)
	ListAvailable(ctx context.Context, owner types.OwnerRef, day types.Date) ([]Definition, error)
	Check(ctx context.Context, owner types.OwnerRef, priceable resource.Reader, in Input) (tiers.Report, error)
	Create(ctx context.Context, owner types.OwnerRef, priceable resource.Reader, in Input) (*Definition, error)
	Update(ctx context.Context, owner types.OwnerRef, id uuid.UUID, priceable resource.Reader, in Input) (*Definition, error)
	Delete(ctx context.Context, owner types.OwnerRef, id uuid.UUID) error
	DeleteOwner(ctx context.Context, owner types.OwnerRef) (int64, error)
}

type service struct {
	repo     *Repository
	registry *setup.Registry
	cache    Cache
	metrics  *metrics.QuoteMetrics
	logg     *logger.Logger
}

// NewService builds a definitions service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "definitions repo is required")
	}
	if params.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "pricing setup registry is required")
	}
	cache := params.Cache
	if cache == nil {
		cache = NoopCache()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     params.Repo,
		registry: params.Registry,
		cache:    cache,
		metrics:  params.Metrics,
		logg:     logg,
	}, nil
}

// List returns the owner's definitions in creation order, served from the
// cache when possible. Cache failures fall back to the database.
func (s *service) List(ctx context.Context, owner types.OwnerRef) ([]Definition, error) {
	if _, err := s.priceable(owner); err != nil {
		return nil, err
	}
	ctx = s.logg.WithPriceable(ctx, owner.Type, owner.ID)

	defs, hit, err := s.cache.Get(ctx, owner)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "definitions cache read failed")
	}
	s.metrics.IncCacheLookup(hit)
	if hit {
		return defs, nil
	}

	defs, err = s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pricing definitions")
	}
	if err := s.cache.Set(ctx, owner, defs); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "definitions cache write failed")
	}
	return defs, nil
}

// ListAvailable returns the owner's definitions applying on day, highest
// weight first. It always reads from the database.
func (s *service) ListAvailable(ctx context.Context, owner types.OwnerRef, day types.Date) ([]Definition, error) {
	if _, err := s.priceable(owner); err != nil {
		return nil, err
	}
	defs, err := s.repo.ListAvailable(ctx, owner, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available pricing definitions")
	}
	return defs, nil
}

// Check validates in against the owner's bounds without saving anything.
func (s *service) Check(ctx context.Context, owner types.OwnerRef, priceable resource.Reader, in Input) (tiers.Report, error) {
	cfg, err := s.priceable(owner)
	if err != nil {
		return tiers.Report{}, err
	}
	bounds, err := cfg.Bounds(priceable)
	if err != nil {
		return tiers.Report{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read priceable bounds")
	}
	report := Validate(in.definition(owner), bounds)
	for _, issue := range report.Issues {
		s.metrics.IncIssue(string(issue.Kind))
	}
	if !report.Valid() {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"owner":  owner.String(),
			"issues": len(report.Issues),
		}), "pricing definition rejected")
	}
	return report, nil
}

func (s *service) Create(ctx context.Context, owner types.OwnerRef, priceable resource.Reader, in Input) (*Definition, error) {
	if err := s.ensureValid(ctx, owner, priceable, in); err != nil {
		return nil, err
	}
	def := in.definition(owner)
	if err := s.repo.Create(ctx, &def); err != nil {
		return nil, repoError(err, "create pricing definition")
	}
	s.invalidate(ctx, owner)
	return &def, nil
}

func (s *service) Update(ctx context.Context, owner types.OwnerRef, id uuid.UUID, priceable resource.Reader, in Input) (*Definition, error) {
	if err := s.ensureValid(ctx, owner, priceable, in); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, owner, id)
	if err != nil {
		return nil, repoError(err, "load pricing definition")
	}
	existing.StartsAt = in.StartsAt
	existing.EndsAt = in.EndsAt
	existing.Weight = in.Weight
	existing.Tiers = in.Tiers
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, repoError(err, "update pricing definition")
	}
	s.invalidate(ctx, owner)
	return existing, nil
}

func (s *service) Delete(ctx context.Context, owner types.OwnerRef, id uuid.UUID) error {
	if _, err := s.priceable(owner); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return repoError(err, "delete pricing definition")
	}
	s.invalidate(ctx, owner)
	return nil
}

// DeleteOwner drops every definition of a removed priceable.
func (s *service) DeleteOwner(ctx context.Context, owner types.OwnerRef) (int64, error) {
	if _, err := s.priceable(owner); err != nil {
		return 0, err
	}
	removed, err := s.repo.DeleteByOwner(ctx, owner)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pricing definitions")
	}
	s.invalidate(ctx, owner)
	return removed, nil
}

func (s *service) ensureValid(ctx context.Context, owner types.OwnerRef, priceable resource.Reader, in Input) error {
	report, err := s.Check(ctx, owner, priceable, in)
	if err != nil {
		return err
	}
	if !report.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "pricing definition is invalid").WithDetails(report)
	}
	return nil
}

func (s *service) priceable(owner types.OwnerRef) (setup.Priceable, error) {
	if err := owner.Validate(); err != nil {
		return setup.Priceable{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priceable reference")
	}
	cfg, ok := s.registry.Priceable(owner.Type)
	if !ok {
		return setup.Priceable{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown priceable type "+owner.Type)
	}
	return cfg, nil
}

func (s *service) invalidate(ctx context.Context, owner types.OwnerRef) {
	if err := s.cache.Invalidate(ctx, owner); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "definitions cache invalidation failed")
	}
}

func (in Input) definition(owner types.OwnerRef) Definition {
	return Definition{
		OwnerType: owner.Type,
		OwnerID:   owner.ID,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		Weight:    in.Weight,
		Tiers:     in.Tiers,
	}
}

func repoError(err error, message string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "pricing definition not found")
	case db.IsCheckViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pricing definition interval is invalid")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
