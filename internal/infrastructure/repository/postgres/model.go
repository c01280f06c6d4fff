package postgres

import (
	"time"

	"github.com/lib/pq"
)

type gameTableModel struct {
	ID          int64         `db:"id"`
	WeekStart   time.Time     `db:"week_start"`
	Status      string        `db:"status"`
	WinningNums pq.Int64Array `db:"winning_nums"`
	PublishedAt *time.Time    `db:"published_at"`
	IsDeleted   bool          `db:"is_deleted"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type gameInsertModel struct {
	WeekStart   string        `db:"week_start"`
	Status      string        `db:"status"`
	WinningNums pq.Int64Array `db:"winning_nums"`
	PublishedAt *time.Time    `db:"published_at"`
	IsDeleted   bool          `db:"is_deleted"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type boardTableModel struct {
	ID          int64         `db:"id"`
	GameID      int64         `db:"game_id"`
	PlayerID    int64         `db:"player_id"`
	Numbers     pq.Int64Array `db:"numbers"`
	PriceDKK    int64         `db:"price_dkk"`
	PurchasedAt time.Time     `db:"purchased_at"`
	CreatedAt   time.Time     `db:"created_at"`
}

type boardInsertModel struct {
	GameID      int64         `db:"game_id"`
	PlayerID    int64         `db:"player_id"`
	Numbers     pq.Int64Array `db:"numbers"`
	PriceDKK    int64         `db:"price_dkk"`
	PurchasedAt time.Time     `db:"purchased_at"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type boardRevenueRow struct {
	GameID  int64 `db:"game_id"`
	Revenue int64 `db:"revenue"`
}

type subscriptionTableModel struct {
	ID             int64         `db:"id"`
	PlayerID       int64         `db:"player_id"`
	Numbers        pq.Int64Array `db:"numbers"`
	RemainingWeeks int           `db:"remaining_weeks"`
	IsActive       bool          `db:"is_active"`
	StartedAt      time.Time     `db:"started_at"`
	CanceledAt     *time.Time    `db:"canceled_at"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

type subscriptionInsertModel struct {
	PlayerID       int64         `db:"player_id"`
	Numbers        pq.Int64Array `db:"numbers"`
	RemainingWeeks int           `db:"remaining_weeks"`
	IsActive       bool          `db:"is_active"`
	StartedAt      time.Time     `db:"started_at"`
	CanceledAt     *time.Time    `db:"canceled_at"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

type playerTableModel struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}

func toInt64Array(numbers []int) pq.Int64Array {
	if numbers == nil {
		return nil
	}
	out := make(pq.Int64Array, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, int64(n))
	}
	return out
}

func fromInt64Array(numbers pq.Int64Array) []int {
	if len(numbers) == 0 {
		return nil
	}
	out := make([]int, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, int(n))
	}
	return out
}
