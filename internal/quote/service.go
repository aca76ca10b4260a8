package quote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/internal/snapshots"
	"github.com/angelmondragon/pricingdef/internal/tiers"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/logger"
	"github.com/angelmondragon/pricingdef/pkg/metrics"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DefinitionLister loads every definition a priceable owns.
type DefinitionLister interface {
	List(ctx context.Context, owner types.OwnerRef) ([]definitions.Definition, error)
}

// SnapshotSaver records issued quotes.
type SnapshotSaver interface {
	Save(ctx context.Context, snapshot *snapshots.Snapshot) error
}

// Request asks for a quote on one resource record.
type Request struct {
	ResourceType string       `json:"resource_type" validate:"required"`
	Resource     resource.Map `json:"resource" validate:"required"`
	Persist      bool         `json:"persist"`
}

// Result is a computed quote plus the snapshot recorded for it, if any.
type Result struct {
	Quote        Quote      `json:"quote"`
	DefinitionID uuid.UUID  `json:"definition_id"`
	SnapshotID   *uuid.UUID `json:"snapshot_id,omitempty"`
	Parties      []Party    `json:"parties"`
}

// ServiceParams groups dependencies for the quote service.
type ServiceParams struct {
	Registry    *setup.Registry
	Definitions DefinitionLister
	Snapshots   SnapshotSaver
	Selector    definitions.Selector
	Metrics     *metrics.QuoteMetrics
	Logger      *logger.Logger
}

// Service computes quotes for calculator resources.
type Service interface {
	Quote(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	registry    *setup.Registry
	definitions DefinitionLister
	snapshots   SnapshotSaver
	selector    definitions.Selector
	metrics     *metrics.QuoteMetrics
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "pricing setup registry is required")
	}
	if params.Definitions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "definitions lister is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		registry:    params.Registry,
		definitions: params.Definitions,
		snapshots:   params.Snapshots,
		selector:    params.Selector,
		metrics:     params.Metrics,
		logg:        logg,
	}, nil
}

func (s *service) Quote(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	ctx = s.logg.WithResourceType(ctx, req.ResourceType)
	defer func() {
		outcome := outcomeOf(err)
		s.metrics.ObserveQuote(s.resourceLabel(req.ResourceType), outcome, time.Since(start))
		switch outcome {
		case metrics.OutcomeOK:
			s.logg.Info(s.logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds()), "quote computed")
		case metrics.OutcomeError:
			s.logg.Error(ctx, "quote failed", err)
		default:
			s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "quote rejected")
		}
	}()

	calc, err := New(s.registry, req.ResourceType, req.Resource, WithSelector(s.selector))
	if err != nil {
		return nil, err
	}
	priceable, err := calc.Priceable()
	if err != nil {
		return nil, classify(err)
	}
	ctx = s.logg.WithPriceable(ctx, priceable.Ref.Type, priceable.Ref.ID)

	defs, err := s.definitions.List(ctx, priceable.Ref)
	if err != nil {
		return nil, err
	}
	calc = calc.WithDefinitions(defs)

	if err := validateModifiers(calc); err != nil {
		return nil, err
	}
	q, err := calc.Serialized()
	if err != nil {
		return nil, classify(err)
	}
	def, err := calc.PricingDefinition()
	if err != nil {
		return nil, classify(err)
	}

	parties, err := calc.Parties()
	if err != nil {
		return nil, classify(err)
	}

	result = &Result{Quote: q, DefinitionID: def.ID, Parties: parties}
	if req.Persist {
		id, err := s.persist(ctx, calc, priceable, def, q)
		if err != nil {
			return nil, err
		}
		result.SnapshotID = &id
	}
	return result, nil
}

// resourceLabel keeps metric label values to configured resource types.
func (s *service) resourceLabel(resourceType string) string {
	if _, ok := s.registry.Calculator(resourceType); ok {
		return resourceType
	}
	return "unknown"
}

func (s *service) persist(ctx context.Context, calc *Calculator, priceable Priceable, def *definitions.Definition, q Quote) (uuid.UUID, error) {
	if s.snapshots == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "quote snapshots are not configured")
	}
	resourceID, ok, err := resource.String(calc.Record(), "id")
	if err != nil || !ok || resourceID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, "resource id is required to persist a quote")
	}
	payload, err := json.Marshal(q)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quote")
	}
	definitionID := def.ID
	snapshot := &snapshots.Snapshot{
		ResourceType:  calc.ResourceType(),
		ResourceID:    &resourceID,
		PriceableType: priceable.Ref.Type,
		PriceableID:   priceable.Ref.ID,
		DefinitionID:  &definitionID,
		OverallVolume: q.Request.OverallVolume,
		Currency:      q.Pricing.Currency,
		Payload:       snapshots.Document(payload),
	}
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		return uuid.Nil, err
	}
	return snapshot.ID, nil
}

// validateModifiers rejects the request when any modifier is invalid,
// reporting every issue at once.
func validateModifiers(calc *Calculator) error {
	modifiers, err := calc.Modifiers()
	if err != nil {
		return classify(err)
	}
	issues := lo.FlatMap(modifiers, func(m Modifier, _ int) []tiers.Issue { return m.Validate() })
	if len(issues) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "modifiers are invalid").
		WithDetails(tiers.Report{Issues: issues, ErroneousRanges: map[tiers.IssueKind][]string{}})
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoApplicablePricing):
		return pkgerrors.Wrap(pkgerrors.CodeNoApplicablePricing, err, "no pricing applies to this request")
	case errors.Is(err, definitions.ErrInvalidArgument), errors.Is(err, ErrInvalidResource):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "resource cannot be priced")
	case errors.Is(err, ErrInvalidModifier):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "modifiers are invalid")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute quote")
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNoApplicablePricing:
		return metrics.OutcomeNoApplicablePricing
	case pkgerrors.CodeValidation, pkgerrors.CodeInvalidArgument, pkgerrors.CodeNotFound:
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
