package board

import (
	"fmt"
	"slices"
	"time"
)

// Board is one purchased set of numbers for a game week.
type Board struct {
	ID          int64
	GameID      int64
	PlayerID    int64
	Numbers     []int
	Price       int64
	PurchasedAt time.Time
	CreatedAt   time.Time
}

func (b Board) ValidateBasic() error {
	if b.GameID <= 0 {
		return fmt.Errorf("game id is required")
	}
	if b.PlayerID <= 0 {
		return fmt.Errorf("player id is required")
	}
	if err := ValidateNumbers(b.Numbers); err != nil {
		return err
	}
	expected, err := PriceForCount(len(b.Numbers))
	if err != nil {
		return err
	}
	if b.Price != expected {
		return fmt.Errorf("price %d does not match tariff %d for %d numbers", b.Price, expected, len(b.Numbers))
	}
	if b.PurchasedAt.IsZero() {
		return fmt.Errorf("purchased at is required")
	}

	return nil
}

func cloneNumbers(numbers []int) []int {
	return slices.Clone(numbers)
}

// Clone returns a board that shares no slices with b.
func (b Board) Clone() Board {
	copied := b
	copied.Numbers = cloneNumbers(b.Numbers)
	return copied
}
