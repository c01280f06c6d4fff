package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	"github.com/riskibarqy/weekly-lotto/internal/domain/player"
	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
	"github.com/riskibarqy/weekly-lotto/internal/usecase"
)

// state is everything the store holds. A transaction works on a clone and
// replaces the live state on commit.
type state struct {
	games         map[int64]game.Week
	boards        map[int64]board.Board
	subscriptions map[int64]subscription.Subscription
	players       map[int64]player.Player

	lastGameID         int64
	lastBoardID        int64
	lastSubscriptionID int64
}

func newState() *state {
	return &state{
		games:         make(map[int64]game.Week),
		boards:        make(map[int64]board.Board),
		subscriptions: make(map[int64]subscription.Subscription),
		players:       make(map[int64]player.Player),
	}
}

func (s *state) clone() *state {
	copied := &state{
		games:              make(map[int64]game.Week, len(s.games)),
		boards:             make(map[int64]board.Board, len(s.boards)),
		subscriptions:      make(map[int64]subscription.Subscription, len(s.subscriptions)),
		players:            maps.Clone(s.players),
		lastGameID:         s.lastGameID,
		lastBoardID:        s.lastBoardID,
		lastSubscriptionID: s.lastSubscriptionID,
	}
	for id, w := range s.games {
		copied.games[id] = w.Clone()
	}
	for id, b := range s.boards {
		copied.boards[id] = b.Clone()
	}
	for id, sub := range s.subscriptions {
		copied.subscriptions[id] = sub.Clone()
	}
	return copied
}

// accessor runs fn against the state a repository is bound to.
type accessor func(write bool, fn func(st *state) error) error

// Store is an in-process usecase.Store. Transactions are serialized by one
// lock, so they never conflict and are never retried.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	data  *state
	repos usecase.Repositories
}

var _ usecase.Store = (*Store)(nil)

func NewStore(players []player.Player) *Store {
	s := &Store{data: newState()}
	for _, p := range players {
		s.data.players[p.ID] = p
	}
	s.repos = bindRepositories(s.live)
	return s
}

func (s *Store) live(write bool, fn func(st *state) error) error {
	if write {
		s.txMu.Lock()
		defer s.txMu.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.data)
}

func (s *Store) Repositories() usecase.Repositories {
	return s.repos
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	working := s.data.clone()
	s.mu.RUnlock()

	bound := func(_ bool, fn func(st *state) error) error {
		return fn(working)
	}
	if err := fn(ctx, bindRepositories(bound)); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = working
	s.mu.Unlock()
	return nil
}

// PutPlayer inserts or replaces a player record.
func (s *Store) PutPlayer(p player.Player) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.players[p.ID] = p
}

func bindRepositories(access accessor) usecase.Repositories {
	return usecase.Repositories{
		Games:         &GameRepository{access: access},
		Boards:        &BoardRepository{access: access},
		Subscriptions: &SubscriptionRepository{access: access},
		Players:       &PlayerRepository{access: access},
	}
}
