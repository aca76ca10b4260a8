package snapshots

import (
	"context"

	"github.com/angelmondragon/pricingdef/internal/repo"
	"github.com/angelmondragon/pricingdef/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists quote snapshots.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx binds the repository to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

func (r *Repository) Save(ctx context.Context, snapshot *Snapshot) error {
	return r.base.DB(ctx).Create(snapshot).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var snapshot Snapshot
	if err := r.base.DB(ctx).Where("id = ?", id).First(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ListByResource returns the resource's snapshots, newest first.
func (r *Repository) ListByResource(ctx context.Context, ref types.OwnerRef) ([]Snapshot, error) {
	var rows []Snapshot
	err := r.base.DB(ctx).
		Scopes(repo.OwnedBy("resource", ref)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// Detach clears the resource id of every snapshot issued for ref.
func (r *Repository) Detach(ctx context.Context, ref types.OwnerRef) (int64, error) {
	res := r.base.DB(ctx).
		Model(&Snapshot{}).
		Scopes(repo.OwnedBy("resource", ref)).
		Update("resource_id", nil)
	return res.RowsAffected, res.Error
}
