package board

import (
	"errors"
	"testing"
	"time"
)

func TestPriceForCount(t *testing.T) {
	want := map[int]int64{5: 20, 6: 40, 7: 80, 8: 160}
	for n, price := range want {
		got, err := PriceForCount(n)
		if err != nil {
			t.Fatalf("price for %d: %v", n, err)
		}
		if got != price {
			t.Fatalf("price for %d: want %d, got %d", n, price, got)
		}
	}

	for _, n := range []int{-1, 0, 1, 4, 9, 16, 100} {
		if _, err := PriceForCount(n); !errors.Is(err, ErrUnsupportedCount) {
			t.Fatalf("price for %d: expected ErrUnsupportedCount, got %v", n, err)
		}
	}
}

func TestValidateNumbers(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
		wantErr bool
	}{
		{name: "five numbers", numbers: []int{1, 3, 5, 7, 9}},
		{name: "eight numbers", numbers: []int{1, 3, 5, 7, 9, 11, 13, 15}},
		{name: "bounds inclusive", numbers: []int{1, 16, 2, 15, 8}},
		{name: "nil", numbers: nil, wantErr: true},
		{name: "too few", numbers: []int{1, 2, 3, 4}, wantErr: true},
		{name: "too many", numbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, wantErr: true},
		{name: "zero", numbers: []int{0, 2, 3, 4, 5}, wantErr: true},
		{name: "above sixteen", numbers: []int{1, 2, 3, 4, 17}, wantErr: true},
		{name: "duplicate", numbers: []int{1, 2, 3, 4, 4}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNumbers(tc.numbers)
			if tc.wantErr && !errors.Is(err, ErrInvalidNumbers) {
				t.Fatalf("expected ErrInvalidNumbers, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected valid numbers, got %v", err)
			}
		})
	}
}

func TestBoard_ValidateBasic(t *testing.T) {
	b := Board{
		GameID:      1,
		PlayerID:    2,
		Numbers:     []int{1, 2, 3, 4, 5, 6},
		Price:       40,
		PurchasedAt: time.Date(2025, 12, 16, 9, 0, 0, 0, time.UTC),
	}
	if err := b.ValidateBasic(); err != nil {
		t.Fatalf("expected valid board, got %v", err)
	}

	b.Price = 20
	if err := b.ValidateBasic(); err == nil {
		t.Fatalf("expected price mismatch to fail")
	}

	clone := b.Clone()
	clone.Numbers[0] = 16
	if b.Numbers[0] != 1 {
		t.Fatalf("clone must not share numbers")
	}
}
