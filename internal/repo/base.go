package repo

import (
	"context"

	"github.com/angelmondragon/pricingdef/pkg/types"
	"gorm.io/gorm"
)

// Base provides the connection shared by the pricing repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a Base running on tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// OwnedBy scopes a query to one polymorphic reference stored in the
// <column>_type and <column>_id pair.
func OwnedBy(column string, ref types.OwnerRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+"_type = ? AND "+column+"_id = ?", ref.Type, ref.ID)
	}
}
