package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	"github.com/riskibarqy/weekly-lotto/internal/domain/calendar"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	"github.com/riskibarqy/weekly-lotto/internal/domain/player"
	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
	"github.com/riskibarqy/weekly-lotto/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// CreateBoardInput is the incoming payload for a board purchase.
type CreateBoardInput struct {
	PlayerID    int64
	GameID      int64
	Numbers     []int
	RepeatWeeks int
}

type CreateBoardResult struct {
	Board        board.Board
	Subscription *subscription.Subscription
}

// BoardService admits board purchases against the active week.
type BoardService struct {
	store          Store
	calendar       calendar.Calendar
	clock          clockwork.Clock
	logger         *logging.Logger
	maxRepeatWeeks int
}

func NewBoardService(store Store, cal calendar.Calendar, clock clockwork.Clock, logger *logging.Logger) *BoardService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &BoardService{
		store:          store,
		calendar:       cal,
		clock:          clock,
		logger:         logger,
		maxRepeatWeeks: subscription.MaxWeeks,
	}
}

// WithMaxRepeatWeeks lowers the repeat cap below the subscription maximum.
func (s *BoardService) WithMaxRepeatWeeks(weeks int) *BoardService {
	if weeks > 0 {
		s.maxRepeatWeeks = subscription.ClampWeeks(weeks)
	}
	return s
}

func (s *BoardService) Create(ctx context.Context, input CreateBoardInput) (result CreateBoardResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.Create",
		attribute.Int64("game.id", input.GameID),
		attribute.Int64("player.id", input.PlayerID),
	)
	defer func() { endUsecaseSpan(span, err) }()

	if err := board.ValidateNumbers(input.Numbers); err != nil {
		return CreateBoardResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if input.PlayerID <= 0 {
		return CreateBoardResult{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}
	if input.GameID <= 0 {
		return CreateBoardResult{}, fmt.Errorf("%w: game id must be positive", ErrInvalidInput)
	}
	// Repeat weeks are clamped to [0, max]; zero or less buys a single board.
	repeatWeeks := max(0, min(input.RepeatWeeks, s.maxRepeatWeeks))

	price, err := board.PriceForCount(len(input.Numbers))
	if err != nil {
		return CreateBoardResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	repos := s.store.Repositories()
	if _, err := s.admit(ctx, repos, input.PlayerID, input.GameID); err != nil {
		return CreateBoardResult{}, err
	}

	numbers := slices.Clone(input.Numbers)
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		result = CreateBoardResult{}

		// Re-check inside the transaction; the week may have closed meanwhile.
		week, err := s.admit(ctx, repos, input.PlayerID, input.GameID)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		created, err := repos.Boards.Create(ctx, board.Board{
			GameID:      week.ID,
			PlayerID:    input.PlayerID,
			Numbers:     numbers,
			Price:       price,
			PurchasedAt: now,
			CreatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("create board: %w", err)
		}
		result.Board = created

		if repeatWeeks == 0 {
			return nil
		}

		sub, err := repos.Subscriptions.Create(ctx, subscription.Subscription{
			PlayerID:       input.PlayerID,
			Numbers:        slices.Clone(numbers),
			RemainingWeeks: repeatWeeks,
			IsActive:       true,
			StartedAt:      now,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		result.Subscription = &sub
		return nil
	})
	if err != nil {
		return CreateBoardResult{}, translateStoreError(err)
	}

	logArgs := []any{
		"board_id", result.Board.ID,
		"game_id", result.Board.GameID,
		"player_id", result.Board.PlayerID,
		"numbers_count", len(result.Board.Numbers),
		"price", result.Board.Price,
	}
	if result.Subscription != nil {
		logArgs = append(logArgs, "subscription_id", result.Subscription.ID, "repeat_weeks", result.Subscription.RemainingWeeks)
	}
	s.logger.InfoContext(ctx, "board purchased", logArgs...)
	return result, nil
}

// admit checks player eligibility, game state and the sales cutoff.
func (s *BoardService) admit(ctx context.Context, repos Repositories, playerID, gameID int64) (game.Week, error) {
	if err := requireActivePlayer(ctx, repos.Players, playerID); err != nil {
		return game.Week{}, err
	}

	week, exists, err := repos.Games.GetByID(ctx, gameID)
	if err != nil {
		return game.Week{}, fmt.Errorf("get game id=%d: %w", gameID, err)
	}
	if !exists {
		return game.Week{}, fmt.Errorf("%w: game id=%d", ErrNotFound, gameID)
	}
	if !week.IsActive() {
		return game.Week{}, fmt.Errorf("%w: game id=%d is %s, boards can only be bought for the active week", ErrConflict, gameID, week.Status)
	}
	if s.calendar.CutoffPassed(s.clock, week.WeekStart) {
		return game.Week{}, fmt.Errorf("%w: cutoff was %s", ErrCutoffPassed, s.calendar.CutoffAt(week.WeekStart).Format("2006-01-02 15:04 MST"))
	}
	return week, nil
}

func requireActivePlayer(ctx context.Context, players player.Repository, playerID int64) error {
	p, exists, err := players.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player id=%d: %w", playerID, err)
	}
	if !exists {
		return fmt.Errorf("%w: player id=%d", ErrNotFound, playerID)
	}
	if !p.IsActive {
		return fmt.Errorf("%w: player id=%d is inactive", ErrConflict, playerID)
	}
	return nil
}
