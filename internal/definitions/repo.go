package definitions

import (
	"context"

	"github.com/angelmondragon/pricingdef/internal/repo"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists pricing definitions.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a definitions repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, def *Definition) error {
	return r.base.DB(ctx).Create(def).Error
}

// Update rewrites the mutable columns of def.
func (r *Repository) Update(ctx context.Context, def *Definition) error {
	res := r.base.DB(ctx).Model(def).
		Scopes(repo.OwnedBy("owner", def.Owner())).
		Select("starts_at", "ends_at", "weight", "tiers", "updated_at").
		Updates(def)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID loads one definition of owner.
func (r *Repository) FindByID(ctx context.Context, owner types.OwnerRef, id uuid.UUID) (*Definition, error) {
	var def Definition
	err := r.base.DB(ctx).Scopes(repo.OwnedBy("owner", owner)).Where("id = ?", id).First(&def).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// ListByOwner returns every definition of owner in creation order.
func (r *Repository) ListByOwner(ctx context.Context, owner types.OwnerRef) ([]Definition, error) {
	var rows []Definition
	err := r.base.DB(ctx).
		Scopes(repo.OwnedBy("owner", owner)).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAvailable returns the definitions of owner applying on day, highest
// weight first, then creation order.
func (r *Repository) ListAvailable(ctx context.Context, owner types.OwnerRef, day types.Date) ([]Definition, error) {
	var rows []Definition
	err := r.base.DB(ctx).
		Scopes(repo.OwnedBy("owner", owner)).
		Where("((starts_at IS NULL AND ends_at IS NULL) OR (? BETWEEN starts_at AND ends_at))", day).
		Order("weight DESC").Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes one definition of owner.
func (r *Repository) Delete(ctx context.Context, owner types.OwnerRef, id uuid.UUID) error {
	res := r.base.DB(ctx).Scopes(repo.OwnedBy("owner", owner)).Where("id = ?", id).Delete(&Definition{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByOwner removes every definition of owner and reports how many went.
func (r *Repository) DeleteByOwner(ctx context.Context, owner types.OwnerRef) (int64, error) {
	res := r.base.DB(ctx).Scopes(repo.OwnedBy("owner", owner)).Delete(&Definition{})
	return res.RowsAffected, res.Error
}
