package game

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Status is the lifecycle state of a game week.
type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
	StatusClosed   Status = "closed"
)

var AllStatuses = map[Status]struct{}{
	StatusInactive: {},
	StatusActive:   {},
	StatusClosed:   {},
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	_, ok := AllStatuses[s]
	return s, ok
}

const (
	MinNumber          = 1
	MaxNumber          = 16
	WinningNumberCount = 3
)

var (
	ErrInvalidWinningNumbers = errors.New("invalid winning numbers")
	ErrDuplicateWeek         = errors.New("game week already exists")
	ErrConcurrentUpdate      = errors.New("concurrent game week update")
)

// WinningNumbers is a set of exactly three distinct numbers in [1,16], kept sorted.
// The zero value means no numbers have been drawn yet.
type WinningNumbers []int

func NewWinningNumbers(numbers []int) (WinningNumbers, error) {
	if len(numbers) != WinningNumberCount {
		return nil, fmt.Errorf("%w: exactly %d numbers required, got %d", ErrInvalidWinningNumbers, WinningNumberCount, len(numbers))
	}
	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if n < MinNumber || n > MaxNumber {
			return nil, fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidWinningNumbers, n, MinNumber, MaxNumber)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: %d appears more than once", ErrInvalidWinningNumbers, n)
		}
		seen[n] = struct{}{}
	}

	out := slices.Clone(numbers)
	slices.Sort(out)
	return out, nil
}

func (w WinningNumbers) IsSet() bool {
	return len(w) == WinningNumberCount
}

// Matches reports whether every winning number is among the board numbers.
func (w WinningNumbers) Matches(boardNumbers []int) bool {
	if !w.IsSet() {
		return false
	}
	for _, n := range w {
		if !slices.Contains(boardNumbers, n) {
			return false
		}
	}
	return true
}

// Week is one weekly game, keyed by the Monday it starts on.
type Week struct {
	ID             int64
	WeekStart      time.Time
	Status         Status
	WinningNumbers WinningNumbers
	PublishedAt    *time.Time
	Deleted        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (w Week) IsActive() bool {
	return w.Status == StatusActive && !w.Deleted
}

func (w Week) IsClosed() bool {
	return w.Status == StatusClosed && !w.Deleted
}

// Activate marks the week active and clears a soft delete.
func (w *Week) Activate(now time.Time) {
	w.Status = StatusActive
	w.Deleted = false
	w.UpdatedAt = now
}

func (w *Week) Deactivate(now time.Time) {
	w.Status = StatusInactive
	w.UpdatedAt = now
}

// Close stores the drawn numbers and stamps the publish time.
func (w *Week) Close(numbers WinningNumbers, now time.Time) {
	published := now
	w.Status = StatusClosed
	w.WinningNumbers = numbers
	w.PublishedAt = &published
	w.UpdatedAt = now
}

// Reopen reverts a close: the week is active again with no numbers drawn.
func (w *Week) Reopen(now time.Time) {
	w.Status = StatusActive
	w.WinningNumbers = nil
	w.PublishedAt = nil
	w.Deleted = false
	w.UpdatedAt = now
}

// Retract soft-deletes a placeholder week created by a publish.
func (w *Week) Retract(now time.Time) {
	w.Status = StatusInactive
	w.Deleted = true
	w.UpdatedAt = now
}

func (w Week) ValidateBasic() error {
	if w.WeekStart.IsZero() {
		return fmt.Errorf("week start is required")
	}
	if w.WeekStart.Weekday() != time.Monday {
		return fmt.Errorf("week start %s is not a monday", w.WeekStart.Format("2006-01-02"))
	}
	if _, ok := AllStatuses[w.Status]; !ok {
		return fmt.Errorf("unknown game status %q", w.Status)
	}
	if len(w.WinningNumbers) != 0 && !w.WinningNumbers.IsSet() {
		return fmt.Errorf("winning numbers must be empty or exactly %d values", WinningNumberCount)
	}

	return nil
}

// Clone returns a week that shares no slices or pointers with w.
func (w Week) Clone() Week {
	copied := w
	copied.WinningNumbers = slices.Clone(w.WinningNumbers)
	if w.PublishedAt != nil {
		published := *w.PublishedAt
		copied.PublishedAt = &published
	}
	return copied
}
