package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	"github.com/riskibarqy/weekly-lotto/internal/domain/player"
	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
)

// Repositories groups the repositories a use case can touch in one unit of work.
type Repositories struct {
	Games         game.Repository
	Boards        board.Repository
	Subscriptions subscription.Repository
	Players       player.Repository
}

// Store is the transactional persistence boundary shared by the use cases.
//
// WithinTx runs fn against repositories bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise. An
// implementation may run fn more than once when the transaction loses a
// serialization race, so fn must not have side effects outside the
// repositories. When retries are exhausted the error wraps
// game.ErrConcurrentUpdate.
type Store interface {
	Repositories() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// translateStoreError turns lost races reported by a Store into conflicts.
func translateStoreError(err error) error {
	if errors.Is(err, game.ErrConcurrentUpdate) || errors.Is(err, game.ErrDuplicateWeek) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
