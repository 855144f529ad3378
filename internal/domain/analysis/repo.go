package analysis

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both a nonexistent analysis and one owned by another
// user; callers cannot distinguish the two.
var ErrNotFound = errors.New("analysis: not found")

// ErrNotCompleted is returned when a result is requested before the analysis
// has completed.
var ErrNotCompleted = errors.New("analysis: not completed")

type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	// GetByID is owner-scoped: a mismatched user id reads as ErrNotFound.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Analysis, error)
	// GetForUpdate row-locks the analysis for the duration of the enclosing
	// transaction. Not owner-scoped; only the runner uses it.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Analysis, error)
	Update(ctx context.Context, a *Analysis) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Analysis, int, error)
}
