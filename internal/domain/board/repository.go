package board

import "context"

// Repository describes board persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, b Board) (Board, error)
	ExistsForGame(ctx context.Context, gameID int64) (bool, error)
	ListByGame(ctx context.Context, gameID int64) ([]Board, error)
	// RevenueByGame sums board prices per game id for the given games.
	RevenueByGame(ctx context.Context, gameIDs []int64) (map[int64]int64, error)
}
