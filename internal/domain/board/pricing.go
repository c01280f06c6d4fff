package board

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
)

const (
	MinNumbersPerBoard = 5
	MaxNumbersPerBoard = 8
)

var (
	ErrInvalidNumbers   = errors.New("invalid board numbers")
	ErrUnsupportedCount = errors.New("unsupported number count")
)

// tariff is the board price in DKK by how many numbers it covers.
var tariff = map[int]int64{
	5: 20,
	6: 40,
	7: 80,
	8: 160,
}

// PriceForCount returns the fixed price for a board with n numbers.
func PriceForCount(n int) (int64, error) {
	price, ok := tariff[n]
	if !ok {
		return 0, fmt.Errorf("%w: %d, expected %d..%d", ErrUnsupportedCount, n, MinNumbersPerBoard, MaxNumbersPerBoard)
	}
	return price, nil
}

// ValidateNumbers checks count, range and uniqueness of a board or subscription number set.
func ValidateNumbers(numbers []int) error {
	if len(numbers) < MinNumbersPerBoard || len(numbers) > MaxNumbersPerBoard {
		return fmt.Errorf("%w: %d numbers given, expected %d..%d", ErrInvalidNumbers, len(numbers), MinNumbersPerBoard, MaxNumbersPerBoard)
	}

	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if n < game.MinNumber || n > game.MaxNumber {
			return fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidNumbers, n, game.MinNumber, game.MaxNumber)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %d appears more than once", ErrInvalidNumbers, n)
		}
		seen[n] = struct{}{}
	}

	return nil
}
