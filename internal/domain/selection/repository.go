package selection

import (
	"context"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
)

// Repository persists selected ids per dimension across sessions.
type Repository interface {
	// Load returns the stored ids. Absent or unreadable state is empty, not an
	// error.
	Load(ctx context.Context, dim catalog.Dimension) []int64
	// Save stores ids; an empty list removes the entry.
	Save(ctx context.Context, dim catalog.Dimension, ids []int64) error
}
