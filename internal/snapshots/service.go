package snapshots

import (
	"context"
	"errors"

	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/logger"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceParams groups dependencies for the snapshots service.
type ServiceParams struct {
	Repo   *Repository
	Logger *logger.Logger
}

// Service records and looks up issued quotes.
type Service interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Get(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	List(ctx context.Context, ref types.OwnerRef) ([]Snapshot, error)
	Detach(ctx context.Context, ref types.OwnerRef) (int64, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "snapshots repo is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: params.Repo, logg: logg}, nil
}

func (s *service) Save(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "snapshot is required")
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save quote snapshot")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	snapshot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "quote snapshot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote snapshot")
	}
	return snapshot, nil
}

func (s *service) List(ctx context.Context, ref types.OwnerRef) ([]Snapshot, error) {
	if err := ref.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid resource reference")
	}
	rows, err := s.repo.ListByResource(ctx, ref)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quote snapshots")
	}
	return rows, nil
}

// Detach keeps the snapshots of a removed resource but drops the link to it.
func (s *service) Detach(ctx context.Context, ref types.OwnerRef) (int64, error) {
	if err := ref.Validate(); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid resource reference")
	}
	detached, err := s.repo.Detach(ctx, ref)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach quote snapshots")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"resource": ref.String(),
		"detached": detached,
	}), "quote snapshots detached")
	return detached, nil
}
