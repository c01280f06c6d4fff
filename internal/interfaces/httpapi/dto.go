package httpapi

import (
	"time"

	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	"github.com/riskibarqy/weekly-lotto/internal/domain/calendar"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
	"github.com/riskibarqy/weekly-lotto/internal/usecase"
)

type startGameRequest struct {
	WeekStart string `json:"week_start" validate:"omitempty,datetime=2006-01-02"`
}

type winningNumbersRequest struct {
	GameID         int64 `json:"game_id" validate:"required,gt=0"`
	WinningNumbers []int `json:"winning_numbers" validate:"required,len=3"`
}

type undoGameRequest struct {
	GameID *int64 `json:"game_id" validate:"omitempty,gt=0"`
}

type createBoardRequest struct {
	PlayerID    int64 `json:"player_id" validate:"required,gt=0"`
	GameID      int64 `json:"game_id" validate:"required,gt=0"`
	Numbers     []int `json:"numbers" validate:"required"`
	RepeatWeeks int   `json:"repeat_weeks"`
}

type createSubscriptionRequest struct {
	PlayerID       int64 `json:"player_id" validate:"required,gt=0"`
	Numbers        []int `json:"numbers" validate:"required"`
	RemainingWeeks int   `json:"remaining_weeks"`
}

type gameDTO struct {
	ID             int64  `json:"id"`
	WeekStart      string `json:"week_start"`
	Status         string `json:"status"`
	WinningNumbers []int  `json:"winning_numbers,omitempty"`
	PublishedAt    string `json:"published_at,omitempty"`
	UpdatedAt      string `json:"updated_at"`
}

type gameOverviewDTO struct {
	Game    gameDTO `json:"game"`
	Revenue int64   `json:"revenue"`
}

type publishResultDTO struct {
	Closed gameDTO `json:"closed"`
	Next   gameDTO `json:"next"`
}

type boardDTO struct {
	ID          int64  `json:"id"`
	GameID      int64  `json:"game_id"`
	PlayerID    int64  `json:"player_id"`
	Numbers     []int  `json:"numbers"`
	Price       int64  `json:"price"`
	PurchasedAt string `json:"purchased_at"`
}

type scoredBoardDTO struct {
	Board    boardDTO `json:"board"`
	IsWinner bool     `json:"is_winner"`
}

type gameBoardsDTO struct {
	GameID      int64            `json:"game_id"`
	Boards      []scoredBoardDTO `json:"boards"`
	WinnerCount int              `json:"winner_count"`
	TotalCount  int              `json:"total_count"`
}

type gameSummaryDTO struct {
	GameID      int64 `json:"game_id"`
	Winners     int   `json:"winners"`
	TotalBoards int   `json:"total_boards"`
}

type subscriptionDTO struct {
	ID             int64  `json:"id"`
	PlayerID       int64  `json:"player_id"`
	Numbers        []int  `json:"numbers"`
	RemainingWeeks int    `json:"remaining_weeks"`
	IsActive       bool   `json:"is_active"`
	StartedAt      string `json:"started_at"`
	CanceledAt     string `json:"canceled_at,omitempty"`
}

type createBoardResultDTO struct {
	Board        boardDTO         `json:"board"`
	Subscription *subscriptionDTO `json:"subscription,omitempty"`
}

func gameToDTO(w game.Week) gameDTO {
	var numbers []int
	if w.WinningNumbers.IsSet() {
		numbers = append(numbers, w.WinningNumbers...)
	}
	return gameDTO{
		ID:             w.ID,
		WeekStart:      calendar.FormatDate(w.WeekStart),
		Status:         string(w.Status),
		WinningNumbers: numbers,
		PublishedAt:    formatOptionalTime(w.PublishedAt),
		UpdatedAt:      formatTime(w.UpdatedAt),
	}
}

func boardToDTO(b board.Board) boardDTO {
	return boardDTO{
		ID:          b.ID,
		GameID:      b.GameID,
		PlayerID:    b.PlayerID,
		Numbers:     append([]int(nil), b.Numbers...),
		Price:       b.Price,
		PurchasedAt: formatTime(b.PurchasedAt),
	}
}

func gameBoardsToDTO(v usecase.GameBoards) gameBoardsDTO {
	items := make([]scoredBoardDTO, 0, len(v.Boards))
	for _, item := range v.Boards {
		items = append(items, scoredBoardDTO{Board: boardToDTO(item.Board), IsWinner: item.IsWinner})
	}
	return gameBoardsDTO{
		GameID:      v.GameID,
		Boards:      items,
		WinnerCount: v.WinnerCount,
		TotalCount:  v.TotalCount,
	}
}

func subscriptionToDTO(s subscription.Subscription) subscriptionDTO {
	return subscriptionDTO{
		ID:             s.ID,
		PlayerID:       s.PlayerID,
		Numbers:        append([]int(nil), s.Numbers...),
		RemainingWeeks: s.RemainingWeeks,
		IsActive:       s.IsActive,
		StartedAt:      formatTime(s.StartedAt),
		CanceledAt:     formatOptionalTime(s.CanceledAt),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}
