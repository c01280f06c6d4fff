package game

import (
	"context"
	"time"
)

// Repository describes game week persistence needs from use cases.
// Reads skip soft-deleted rows unless the method says otherwise.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Week, bool, error)
	GetActive(ctx context.Context) (Week, bool, error)
	// GetByWeekStart also returns a soft-deleted row so it can be reused.
	GetByWeekStart(ctx context.Context, weekStart time.Time) (Week, bool, error)
	LatestClosed(ctx context.Context) (Week, bool, error)
	List(ctx context.Context, statuses []Status) ([]Week, error)
	// Create returns ErrDuplicateWeek when a row for the same week start exists.
	Create(ctx context.Context, week Week) (Week, error)
	Update(ctx context.Context, week Week) error
}
