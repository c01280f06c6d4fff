package subscription

import (
	"fmt"
	"slices"
	"time"
)

// MaxWeeks caps how many weeks a board can be repeated automatically.
const MaxWeeks = 52

// Subscription repeats a frozen number set for a number of upcoming weeks.
type Subscription struct {
	ID             int64
	PlayerID       int64
	Numbers        []int
	RemainingWeeks int
	IsActive       bool
	StartedAt      time.Time
	CanceledAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClampWeeks limits n to [0, MaxWeeks].
func ClampWeeks(n int) int {
	return max(0, min(n, MaxWeeks))
}

func (s *Subscription) Cancel(now time.Time) {
	canceled := now
	s.IsActive = false
	s.CanceledAt = &canceled
	s.UpdatedAt = now
}

func (s Subscription) ValidateBasic() error {
	if s.PlayerID <= 0 {
		return fmt.Errorf("player id is required")
	}
	if len(s.Numbers) == 0 {
		return fmt.Errorf("subscription numbers are required")
	}
	if s.RemainingWeeks < 0 || s.RemainingWeeks > MaxWeeks {
		return fmt.Errorf("remaining weeks must be within 0..%d, got %d", MaxWeeks, s.RemainingWeeks)
	}
	if s.StartedAt.IsZero() {
		return fmt.Errorf("started at is required")
	}

	return nil
}

func (s Subscription) Clone() Subscription {
	copied := s
	copied.Numbers = slices.Clone(s.Numbers)
	if s.CanceledAt != nil {
		canceled := *s.CanceledAt
		copied.CanceledAt = &canceled
	}
	return copied
}
