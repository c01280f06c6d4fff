package player

import "context"

// Repository looks players up by id. Soft-deleted players are reported as missing.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Player, bool, error)
}
