package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	"github.com/riskibarqy/weekly-lotto/internal/domain/calendar"
	"github.com/riskibarqy/weekly-lotto/internal/domain/player"
	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
	"github.com/riskibarqy/weekly-lotto/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/weekly-lotto/internal/mocks/domain/player"
	"github.com/riskibarqy/weekly-lotto/internal/platform/logging"
	"github.com/riskibarqy/weekly-lotto/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBoardService_Create_PricesByNumberCount(t *testing.T) {
	f := newFixture(t, tuesdayMorning)
	ctx := context.Background()

	week, err := f.games.GetActive(ctx)
	require.NoError(t, err)

	tests := []struct {
		numbers []int
		price   int64
	}{
		{numbers: []int{1, 3, 5, 7, 9}, price: 20},
		{numbers: []int{1, 3, 5, 7, 9, 11}, price: 40},
		{numbers: []int{1, 3, 5, 7, 9, 11, 13}, price: 80},
		{numbers: []int{1, 3, 5, 7, 9, 11, 13, 15}, price: 160},
	}
	for _, tc := range tests {
		result, err := f.boards.Create(ctx, usecase.CreateBoardInput{PlayerID: 2, GameID: week.ID, Numbers: tc.numbers})
		require.NoError(t, err)
		assert.Equal(t, tc.price, result.Board.Price, "numbers %v", tc.numbers)
		assert.Equal(t, tc.numbers, result.Board.Numbers)
		assert.True(t, tuesdayMorning.Equal(result.Board.PurchasedAt))
		assert.Nil(t, result.Subscription)
	}
}

func TestBoardService_Create_WithRepeatWeeks(t *testing.T) {
	f := newFixture(t, tuesdayMorning)
	ctx := context.Background()

	week, err := f.games.GetActive(ctx)
	require.NoError(t, err)

	result, err := f.boards.Create(ctx, usecase.CreateBoardInput{
		PlayerID:    1,
		GameID:      week.ID,
		Numbers:     []int{2, 4, 6, 8, 10},
		RepeatWeeks: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, 4, result.Subscription.RemainingWeeks)
	assert.True(t, result.Subscription.IsActive)
	assert.Equal(t, []int{2, 4, 6, 8, 10}, result.Subscription.Numbers)

	clamped, err := f.boards.Create(ctx, usecase.CreateBoardInput{
		PlayerID:    1,
		GameID:      week.ID,
		Numbers:     []int{2, 4, 6, 8, 10},
		RepeatWeeks: 60,
	})
	require.NoError(t, err)
	require.NotNil(t, clamped.Subscription)
	assert.Equal(t, subscription.MaxWeeks, clamped.Subscription.RemainingWeeks)

	negative, err := f.boards.Create(ctx, usecase.CreateBoardInput{
		PlayerID:    1,
		GameID:      week.ID,
		Numbers:     []int{2, 4, 6, 8, 10},
		RepeatWeeks: -3,
	})
	require.NoError(t, err)
	assert.NotZero(t, negative.Board.ID)
	assert.Nil(t, negative.Subscription)

	subs, err := f.subscriptions.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestBoardService_Create_Rejections(t *testing.T) {
	f := newFixture(t, tuesdayMorning)
	ctx := context.Background()

	week, err := f.games.GetActive(ctx)
	require.NoError(t, err)
	valid := []int{1, 3, 5, 7, 9}

	tests := []struct {
		name  string
		input usecase.CreateBoardInput
		want  error
	}{
		{"too few numbers", usecase.CreateBoardInput{PlayerID: 1, GameID: week.ID, Numbers: []int{1, 2, 3, 4}}, board.ErrInvalidNumbers},
		{"duplicate numbers", usecase.CreateBoardInput{PlayerID: 1, GameID: week.ID, Numbers: []int{1, 1, 2, 3, 4}}, usecase.ErrInvalidInput},
		{"number out of range", usecase.CreateBoardInput{PlayerID: 1, GameID: week.ID, Numbers: []int{1, 2, 3, 4, 17}}, usecase.ErrInvalidInput},
		{"unknown player", usecase.CreateBoardInput{PlayerID: 42, GameID: week.ID, Numbers: valid}, usecase.ErrNotFound},
		{"inactive player", usecase.CreateBoardInput{PlayerID: 4, GameID: week.ID, Numbers: valid}, usecase.ErrConflict},
		{"unknown game", usecase.CreateBoardInput{PlayerID: 1, GameID: week.ID + 50, Numbers: valid}, usecase.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.boards.Create(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err = f.games.Publish(ctx, week.ID, []int{1, 2, 3})
	require.NoError(t, err)

	_, err = f.boards.Create(ctx, usecase.CreateBoardInput{PlayerID: 1, GameID: week.ID, Numbers: valid})
	assert.ErrorIs(t, err, usecase.ErrConflict, "closed weeks do not sell boards")
	assert.False(t, errors.Is(err, usecase.ErrCutoffPassed))
}

func TestBoardService_Create_AfterCutoff(t *testing.T) {
	f := newFixture(t, tuesdayMorning)
	ctx := context.Background()

	week, err := f.games.GetActive(ctx)
	require.NoError(t, err)
	input := usecase.CreateBoardInput{PlayerID: 1, GameID: week.ID, Numbers: []int{1, 3, 5, 7, 9}}

	// 15:59:59 UTC on Saturday 20 Dec is 16:59:59 in Copenhagen.
	f.clock.Advance(time.Date(2025, 12, 20, 15, 59, 59, 0, time.UTC).Sub(f.clock.Now()))
	_, err = f.boards.Create(ctx, input)
	require.NoError(t, err, "one second before the cutoff")

	f.clock.Advance(time.Second)
	_, err = f.boards.Create(ctx, input)
	require.ErrorIs(t, err, usecase.ErrCutoffPassed)
	assert.ErrorIs(t, err, usecase.ErrConflict)

	scored, err := f.games.Boards(ctx, week.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, scored.TotalCount)
}

// failingSubscriptions breaks subscription writes so the surrounding
// transaction has to roll the board back.
type failingSubscriptions struct {
	subscription.Repository
}

func (failingSubscriptions) Create(context.Context, subscription.Subscription) (subscription.Subscription, error) {
	return subscription.Subscription{}, errors.New("subscription table unavailable")
}

type subscriptionFailStore struct {
	*memory.Store
}

func (s subscriptionFailStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, repos usecase.Repositories) error {
		repos.Subscriptions = failingSubscriptions{Repository: repos.Subscriptions}
		return fn(ctx, repos)
	})
}

func TestBoardService_Create_SubscriptionFailureLeavesNoBoard(t *testing.T) {
	f := newFixture(t, tuesdayMorning)
	ctx := context.Background()

	week, err := f.games.GetActive(ctx)
	require.NoError(t, err)

	service := usecase.NewBoardService(subscriptionFailStore{Store: f.store}, calendar.Default(), f.clock, logging.NewNop())
	_, err = service.Create(ctx, usecase.CreateBoardInput{
		PlayerID:    1,
		GameID:      week.ID,
		Numbers:     []int{1, 3, 5, 7, 9},
		RepeatWeeks: 3,
	})
	require.Error(t, err)

	exists, err := f.store.Repositories().Boards.ExistsForGame(ctx, week.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

// passthroughStore runs callbacks against fixed repositories without a transaction.
type passthroughStore struct {
	repos usecase.Repositories
}

func (s passthroughStore) Repositories() usecase.Repositories { return s.repos }

func (s passthroughStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	return fn(ctx, s.repos)
}

func TestBoardService_Create_PlayerLookupUsingMockery(t *testing.T) {
	f := newFixture(t, tuesdayMorning)
	ctx := context.Background()

	week, err := f.games.GetActive(ctx)
	require.NoError(t, err)

	players := playermock.NewRepository(t)
	repos := f.store.Repositories()
	repos.Players = players
	service := usecase.NewBoardService(passthroughStore{repos: repos}, calendar.Default(), f.clock, logging.NewNop())

	players.
		On("GetByID", mock.Anything, int64(7)).
		Return(player.Player{ID: 7, Name: "Freja", IsActive: true}, true, nil).
		Twice()
	players.
		On("GetByID", mock.Anything, int64(8)).
		Return(player.Player{}, false, errors.New("player service down")).
		Once()

	_, err = service.Create(ctx, usecase.CreateBoardInput{PlayerID: 8, GameID: week.ID, Numbers: []int{1, 2, 3, 4, 5}})
	require.Error(t, err)
	assert.False(t, errors.Is(err, usecase.ErrNotFound))

	// The in-memory board table only accepts players it knows about.
	f.store.PutPlayer(player.Player{ID: 7, Name: "Freja", IsActive: true})
	result, err := service.Create(ctx, usecase.CreateBoardInput{PlayerID: 7, GameID: week.ID, Numbers: []int{1, 2, 3, 4, 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Board.PlayerID)
}
