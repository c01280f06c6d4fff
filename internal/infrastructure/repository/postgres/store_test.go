package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	"github.com/riskibarqy/weekly-lotto/internal/platform/resilience"
	"github.com/riskibarqy/weekly-lotto/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectActiveGameSQL = "SELECT id, week_start, status, winning_nums, published_at, is_deleted, created_at, updated_at FROM games WHERE status = $1 AND is_deleted = $2 LIMIT 1"
	selectGameByWeekSQL = "SELECT id, week_start, status, winning_nums, published_at, is_deleted, created_at, updated_at FROM games WHERE week_start = $1::date"
	updateGameSQL       = "UPDATE games SET status = $1, winning_nums = $2, published_at = $3, is_deleted = $4, updated_at = $5 WHERE id = $6"
	insertGameSQL       = "INSERT INTO games (week_start, status, winning_nums, published_at, is_deleted, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id"
	boardRevenueSQL     = "SELECT game_id, COALESCE(SUM(price_dkk), 0) AS revenue FROM boards WHERE game_id IN ($1, $2) AND is_deleted = $3 GROUP BY game_id"
	boardExistsSQL      = "SELECT EXISTS (SELECT 1 FROM boards WHERE game_id = $1 AND is_deleted = $2 LIMIT 1)"
)

var (
	gameColumns = []string{"id", "week_start", "status", "winning_nums", "published_at", "is_deleted", "created_at", "updated_at"}
	weekStart   = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	stamp       = time.Date(2025, 12, 16, 9, 0, 0, 0, time.UTC)
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func closedWeek() game.Week {
	published := stamp
	return game.Week{
		ID:             3,
		WeekStart:      weekStart,
		Status:         game.StatusClosed,
		WinningNumbers: game.WinningNumbers{3, 7, 12},
		PublishedAt:    &published,
		UpdatedAt:      stamp,
	}
}

func TestStore_WithinTx_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, 3, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectActiveGameSQL)).
		WithArgs("active", false).
		WillReturnRows(sqlmock.NewRows(gameColumns).
			AddRow(int64(7), weekStart, "active", "{3,7,12}", nil, false, stamp, stamp))
	mock.ExpectCommit()

	var got game.Week
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos usecase.Repositories) error {
		var err error
		var found bool
		got, found, err = repos.Games.GetActive(ctx)
		if !found {
			return errors.New("expected an active game")
		}
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, game.WinningNumbers{3, 7, 12}, got.WinningNumbers)
	assert.True(t, weekStart.Equal(got.WeekStart))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_RetriesSerializationFailure(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, 3, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(updateGameSQL)).
		WillReturnError(&pq.Error{Code: codeSerializationFailure})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(updateGameSQL)).
		WithArgs("closed", sqlmock.AnyArg(), sqlmock.AnyArg(), false, stamp, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	calls := 0
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos usecase.Repositories) error {
		calls++
		return repos.Games.Update(ctx, closedWeek())
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_GivesUpAsConcurrentUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, 2, nil)

	for range 2 {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(updateGameSQL)).
			WillReturnError(&pq.Error{Code: codeUniqueViolation})
		mock.ExpectRollback()
	}

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos usecase.Repositories) error {
		return repos.Games.Update(ctx, closedWeek())
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, game.ErrConcurrentUpdate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_DoesNotRetryDomainErrors(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, 5, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := store.WithinTx(context.Background(), func(context.Context, usecase.Repositories) error {
		calls++
		return usecase.ErrConflict
	})
	assert.ErrorIs(t, err, usecase.ErrConflict)
	assert.Equal(t, 1, calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_BeginFailure(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, 3, nil)

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	err := store.WithinTx(context.Background(), func(context.Context, usecase.Repositories) error {
		t.Fatal("callback must not run without a transaction")
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestGameRepository_CreateMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(insertGameSQL)).
		WithArgs("2025-12-15", "active", nil, nil, false, stamp, stamp).
		WillReturnError(&pq.Error{Code: codeUniqueViolation})

	_, err := repo.Create(context.Background(), game.Week{
		WeekStart: weekStart,
		Status:    game.StatusActive,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	})
	assert.ErrorIs(t, err, game.ErrDuplicateWeek)
	assert.True(t, isRetryable(err), "the driver error stays in the chain")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_CreateReturnsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(insertGameSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	created, err := repo.Create(context.Background(), game.Week{WeekStart: weekStart, Status: game.StatusInactive})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_GetByWeekStartNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectGameByWeekSQL)).
		WithArgs("2025-12-15").
		WillReturnRows(sqlmock.NewRows(gameColumns))

	_, found, err := repo.GetByWeekStart(context.Background(), weekStart)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(updateGameSQL)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), closedWeek())
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_RevenueAndExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBoardRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(boardRevenueSQL)).
		WithArgs(int64(3), int64(4), false).
		WillReturnRows(sqlmock.NewRows([]string{"game_id", "revenue"}).AddRow(int64(3), int64(220)))
	mock.ExpectQuery(regexp.QuoteMeta(boardExistsSQL)).
		WithArgs(int64(4), false).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	revenue, err := repo.RevenueByGame(context.Background(), []int64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{3: 220}, revenue)

	exists, err := repo.ExistsForGame(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, exists)

	empty, err := repo.RevenueByGame(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_BreakerFailsFastAfterOutage(t *testing.T) {
	db, mock := newMockDB(t)
	clock := clockwork.NewFakeClock()
	store := NewStore(db, 3, nil).WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenProbes:   1,
	}, clock))

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	noop := func(context.Context, usecase.Repositories) error { return nil }
	err := store.WithinTx(context.Background(), noop)
	assert.ErrorIs(t, err, usecase.ErrDependencyUnavailable)

	err = store.WithinTx(context.Background(), noop)
	assert.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	assert.ErrorIs(t, err, resilience.ErrOpen)
	require.NoError(t, mock.ExpectationsWereMet())

	clock.Advance(2 * time.Minute)
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, store.WithinTx(context.Background(), noop))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_BreakerIgnoresDomainErrors(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, 3, nil).WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{FailureThreshold: 1}, clockwork.NewFakeClock()))

	for range 2 {
		mock.ExpectBegin()
		mock.ExpectRollback()
		err := store.WithinTx(context.Background(), func(context.Context, usecase.Repositories) error {
			return usecase.ErrConflict
		})
		assert.ErrorIs(t, err, usecase.ErrConflict)
		assert.NotErrorIs(t, err, usecase.ErrDependencyUnavailable)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, isUnavailable(&pq.Error{Code: "08006"}))
	assert.True(t, isUnavailable(sql.ErrConnDone))
	assert.False(t, isUnavailable(&pq.Error{Code: codeSerializationFailure}))
	assert.False(t, isUnavailable(context.Canceled))
	assert.False(t, isUnavailable(errors.New("boom")))
}
