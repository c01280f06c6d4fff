package subscription

import "context"

// Repository describes subscription persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, s Subscription) (Subscription, error)
	GetByID(ctx context.Context, id int64) (Subscription, bool, error)
	ListActiveByPlayer(ctx context.Context, playerID int64) ([]Subscription, error)
	Update(ctx context.Context, s Subscription) error
}
