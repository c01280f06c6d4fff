package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	"github.com/riskibarqy/weekly-lotto/internal/domain/calendar"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	"github.com/riskibarqy/weekly-lotto/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// PublishResult holds the week that was closed and the week that took over.
type PublishResult struct {
	Closed game.Week
	Next   game.Week
}

// WeekOverview is a game week with the total price of the boards sold for it.
type WeekOverview struct {
	Week    game.Week
	Revenue int64
}

// ScoredBoard is a board flagged against the winning numbers of its week.
type ScoredBoard struct {
	Board    board.Board
	IsWinner bool
}

type GameBoards struct {
	GameID      int64
	Boards      []ScoredBoard
	WinnerCount int
	TotalCount  int
}

type GameSummary struct {
	GameID      int64
	Winners     int
	TotalBoards int
}

// GameService owns the game week state machine. It is the only writer of game weeks.
type GameService struct {
	store    Store
	calendar calendar.Calendar
	clock    clockwork.Clock
	logger   *logging.Logger
}

func NewGameService(store Store, cal calendar.Calendar, clock clockwork.Clock, logger *logging.Logger) *GameService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &GameService{
		store:    store,
		calendar: cal,
		clock:    clock,
		logger:   logger,
	}
}

func (s *GameService) now() time.Time {
	return s.clock.Now().UTC()
}

// GetActive returns the active week, creating or activating the row for the
// current calendar week when none is active.
func (s *GameService) GetActive(ctx context.Context) (week game.Week, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GetActive")
	defer func() { endUsecaseSpan(span, err) }()

	active, exists, err := s.store.Repositories().Games.GetActive(ctx)
	if err != nil {
		return game.Week{}, fmt.Errorf("get active game: %w", err)
	}
	if exists {
		return active, nil
	}

	weekStart := s.calendar.IsoWeekMonday(s.now())
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		current, exists, err := repos.Games.GetActive(ctx)
		if err != nil {
			return fmt.Errorf("get active game: %w", err)
		}
		if exists {
			week = current
			return nil
		}

		week, err = s.activateWeek(ctx, repos, weekStart)
		return err
	})
	if err != nil {
		return game.Week{}, translateStoreError(err)
	}

	s.logger.InfoContext(ctx, "game week activated lazily",
		"game_id", week.ID,
		"week_start", calendar.FormatDate(week.WeekStart),
	)
	return week, nil
}

// Start makes weekStart (or the current calendar week when nil) the active
// week, demoting whatever week was active before.
func (s *GameService) Start(ctx context.Context, weekStart *time.Time) (week game.Week, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Start")
	defer func() { endUsecaseSpan(span, err) }()

	target := s.calendar.IsoWeekMonday(s.now())
	if weekStart != nil {
		target = calendar.DateOf(*weekStart)
		if !calendar.IsMonday(target) {
			return game.Week{}, fmt.Errorf("%w: week start %s is not a monday", ErrInvalidInput, calendar.FormatDate(target))
		}
	}

	var demotedID int64
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		demotedID = 0
		existing, found, err := repos.Games.GetByWeekStart(ctx, target)
		if err != nil {
			return fmt.Errorf("get game for week %s: %w", calendar.FormatDate(target), err)
		}
		if found && existing.IsClosed() {
			return fmt.Errorf("%w: week %s is closed, use undo to reopen it", ErrConflict, calendar.FormatDate(target))
		}

		current, exists, err := repos.Games.GetActive(ctx)
		if err != nil {
			return fmt.Errorf("get active game: %w", err)
		}
		if exists {
			if current.WeekStart.Equal(target) {
				week = current
				return nil
			}
			current.Deactivate(s.now())
			if err := repos.Games.Update(ctx, current); err != nil {
				return fmt.Errorf("demote active game id=%d: %w", current.ID, err)
			}
			demotedID = current.ID
		}

		week, err = s.activateWeek(ctx, repos, target)
		return err
	})
	if err != nil {
		return game.Week{}, translateStoreError(err)
	}

	s.logger.InfoContext(ctx, "game week started",
		"game_id", week.ID,
		"week_start", calendar.FormatDate(week.WeekStart),
		"demoted_game_id", demotedID,
	)
	return week, nil
}

// Publish closes the active week with its winning numbers and activates the
// following week in the same transaction.
func (s *GameService) Publish(ctx context.Context, gameID int64, numbers []int) (result PublishResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Publish", attribute.Int64("game.id", gameID))
	defer func() { endUsecaseSpan(span, err) }()

	winning, err := game.NewWinningNumbers(numbers)
	if err != nil {
		return PublishResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		current, err := s.loadWeek(ctx, repos, gameID)
		if err != nil {
			return err
		}
		if !current.IsActive() {
			return fmt.Errorf("%w: game id=%d is %s, only the active week can be published", ErrConflict, gameID, current.Status)
		}

		now := s.now()
		current.Close(winning, now)
		if err := repos.Games.Update(ctx, current); err != nil {
			return fmt.Errorf("close game id=%d: %w", gameID, err)
		}

		next, err := s.activateWeek(ctx, repos, calendar.NextWeek(current.WeekStart))
		if err != nil {
			return err
		}

		result = PublishResult{Closed: current, Next: next}
		return nil
	})
	if err != nil {
		return PublishResult{}, translateStoreError(err)
	}

	s.logger.InfoContext(ctx, "game week published",
		"game_id", result.Closed.ID,
		"week_start", calendar.FormatDate(result.Closed.WeekStart),
		"winning_numbers", []int(result.Closed.WinningNumbers),
		"next_game_id", result.Next.ID,
		"next_week_start", calendar.FormatDate(result.Next.WeekStart),
	)
	return result, nil
}

// Draft stores provisional winning numbers on the active week without closing it.
func (s *GameService) Draft(ctx context.Context, gameID int64, numbers []int) (week game.Week, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Draft", attribute.Int64("game.id", gameID))
	defer func() { endUsecaseSpan(span, err) }()

	winning, err := game.NewWinningNumbers(numbers)
	if err != nil {
		return game.Week{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		current, err := s.loadWeek(ctx, repos, gameID)
		if err != nil {
			return err
		}
		switch current.Status {
		case game.StatusActive:
		case game.StatusClosed:
			return fmt.Errorf("%w: game id=%d is closed, drafts are only allowed before publishing", ErrConflict, gameID)
		default:
			return fmt.Errorf("%w: game id=%d is %s, only the active week can hold a draft", ErrConflict, gameID, current.Status)
		}

		current.WinningNumbers = winning
		current.UpdatedAt = s.now()
		if err := repos.Games.Update(ctx, current); err != nil {
			return fmt.Errorf("save draft for game id=%d: %w", gameID, err)
		}
		week = current
		return nil
	})
	if err != nil {
		return game.Week{}, translateStoreError(err)
	}

	s.logger.InfoContext(ctx, "game week draft saved",
		"game_id", week.ID,
		"draft_numbers", []int(week.WinningNumbers),
	)
	return week, nil
}

// Undo reopens a closed week. Without an id it targets the closed week with
// the latest week start. It refuses when the following week already sold boards.
func (s *GameService) Undo(ctx context.Context, closedGameID *int64) (week game.Week, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Undo")
	defer func() { endUsecaseSpan(span, err) }()

	var retractedID, demotedID int64
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		retractedID, demotedID = 0, 0

		closed, err := s.resolveClosed(ctx, repos, closedGameID)
		if err != nil {
			return err
		}

		next, nextExists, err := repos.Games.GetByWeekStart(ctx, calendar.NextWeek(closed.WeekStart))
		if err != nil {
			return fmt.Errorf("get week after game id=%d: %w", closed.ID, err)
		}
		if nextExists {
			sold, err := repos.Boards.ExistsForGame(ctx, next.ID)
			if err != nil {
				return fmt.Errorf("check boards for game id=%d: %w", next.ID, err)
			}
			if sold {
				return fmt.Errorf("%w: week %s already has purchases, undo is not possible", ErrConflict, calendar.FormatDate(next.WeekStart))
			}
		}

		now := s.now()
		active, activeExists, err := repos.Games.GetActive(ctx)
		if err != nil {
			return fmt.Errorf("get active game: %w", err)
		}
		if activeExists {
			if nextExists && active.ID == next.ID {
				active.Retract(now)
				retractedID = active.ID
			} else {
				active.Deactivate(now)
				demotedID = active.ID
			}
			if err := repos.Games.Update(ctx, active); err != nil {
				return fmt.Errorf("step down active game id=%d: %w", active.ID, err)
			}
		}

		closed.Reopen(now)
		if err := repos.Games.Update(ctx, closed); err != nil {
			return fmt.Errorf("reopen game id=%d: %w", closed.ID, err)
		}
		week = closed
		return nil
	})
	if err != nil {
		return game.Week{}, translateStoreError(err)
	}

	s.logger.InfoContext(ctx, "game week undone",
		"game_id", week.ID,
		"week_start", calendar.FormatDate(week.WeekStart),
		"retracted_game_id", retractedID,
		"demoted_game_id", demotedID,
	)
	return week, nil
}

// List returns non-deleted weeks, newest first, with their board revenue.
// An empty status lists active and closed weeks.
func (s *GameService) List(ctx context.Context, status string) (items []WeekOverview, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.List")
	defer func() { endUsecaseSpan(span, err) }()

	statuses := []game.Status{game.StatusActive, game.StatusClosed}
	if status != "" {
		parsed, ok := game.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		statuses = []game.Status{parsed}
	}

	repos := s.store.Repositories()
	weeks, err := repos.Games.List(ctx, statuses)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	ids := make([]int64, 0, len(weeks))
	for _, w := range weeks {
		ids = append(ids, w.ID)
	}
	revenue, err := repos.Boards.RevenueByGame(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("sum board revenue: %w", err)
	}

	items = make([]WeekOverview, 0, len(weeks))
	for _, w := range weeks {
		items = append(items, WeekOverview{Week: w, Revenue: revenue[w.ID]})
	}
	return items, nil
}

// Boards lists the boards sold for a week. Once the week is closed, boards
// holding all winning numbers are flagged as winners; drafts never score.
func (s *GameService) Boards(ctx context.Context, gameID int64) (out GameBoards, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Boards", attribute.Int64("game.id", gameID))
	defer func() { endUsecaseSpan(span, err) }()

	repos := s.store.Repositories()
	week, err := s.loadWeek(ctx, repos, gameID)
	if err != nil {
		return GameBoards{}, err
	}

	boards, err := repos.Boards.ListByGame(ctx, gameID)
	if err != nil {
		return GameBoards{}, fmt.Errorf("list boards for game id=%d: %w", gameID, err)
	}

	out = GameBoards{
		GameID:     gameID,
		Boards:     make([]ScoredBoard, 0, len(boards)),
		TotalCount: len(boards),
	}
	for _, b := range boards {
		winner := week.IsClosed() && week.WinningNumbers.Matches(b.Numbers)
		if winner {
			out.WinnerCount++
		}
		out.Boards = append(out.Boards, ScoredBoard{Board: b, IsWinner: winner})
	}
	return out, nil
}

func (s *GameService) Summary(ctx context.Context, gameID int64) (GameSummary, error) {
	scored, err := s.Boards(ctx, gameID)
	if err != nil {
		return GameSummary{}, err
	}
	return GameSummary{
		GameID:      gameID,
		Winners:     scored.WinnerCount,
		TotalBoards: scored.TotalCount,
	}, nil
}

// activateWeek finds or creates the row for weekStart and makes it active.
// A closed row is never reactivated here. The caller must have demoted any
// other active week first.
func (s *GameService) activateWeek(ctx context.Context, repos Repositories, weekStart time.Time) (game.Week, error) {
	now := s.now()
	existing, exists, err := repos.Games.GetByWeekStart(ctx, weekStart)
	if err != nil {
		return game.Week{}, fmt.Errorf("get game for week %s: %w", calendar.FormatDate(weekStart), err)
	}

	if !exists {
		created, err := repos.Games.Create(ctx, game.Week{
			WeekStart: weekStart,
			Status:    game.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return game.Week{}, fmt.Errorf("create game for week %s: %w", calendar.FormatDate(weekStart), err)
		}
		return created, nil
	}

	if existing.IsActive() {
		return existing, nil
	}
	if existing.IsClosed() {
		return game.Week{}, fmt.Errorf("%w: week %s is already published, use undo to reopen it", ErrConflict, calendar.FormatDate(weekStart))
	}
	existing.Activate(now)
	if err := repos.Games.Update(ctx, existing); err != nil {
		return game.Week{}, fmt.Errorf("activate game id=%d: %w", existing.ID, err)
	}
	return existing, nil
}

func (s *GameService) loadWeek(ctx context.Context, repos Repositories, gameID int64) (game.Week, error) {
	if gameID <= 0 {
		return game.Week{}, fmt.Errorf("%w: game id must be positive", ErrInvalidInput)
	}
	week, exists, err := repos.Games.GetByID(ctx, gameID)
	if err != nil {
		return game.Week{}, fmt.Errorf("get game id=%d: %w", gameID, err)
	}
	if !exists {
		return game.Week{}, fmt.Errorf("%w: game id=%d", ErrNotFound, gameID)
	}
	return week, nil
}

func (s *GameService) resolveClosed(ctx context.Context, repos Repositories, closedGameID *int64) (game.Week, error) {
	if closedGameID == nil {
		closed, exists, err := repos.Games.LatestClosed(ctx)
		if err != nil {
			return game.Week{}, fmt.Errorf("get latest closed game: %w", err)
		}
		if !exists {
			return game.Week{}, fmt.Errorf("%w: there is no closed week to undo", ErrConflict)
		}
		return closed, nil
	}

	closed, err := s.loadWeek(ctx, repos, *closedGameID)
	if err != nil {
		return game.Week{}, err
	}
	if !closed.IsClosed() {
		return game.Week{}, fmt.Errorf("%w: game id=%d is %s, only closed weeks can be undone", ErrConflict, closed.ID, closed.Status)
	}
	return closed, nil
}
