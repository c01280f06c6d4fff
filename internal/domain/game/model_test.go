package game

import (
	"errors"
	"testing"
	"time"
)

func TestNewWinningNumbers(t *testing.T) {
	got, err := NewWinningNumbers([]int{12, 3, 7})
	if err != nil {
		t.Fatalf("new winning numbers: %v", err)
	}
	want := WinningNumbers{3, 7, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sorted %v, got %v", want, got)
		}
	}

	invalid := [][]int{
		nil,
		{1, 2},
		{1, 2, 3, 4},
		{0, 2, 3},
		{1, 2, 17},
		{5, 5, 6},
	}
	for _, numbers := range invalid {
		if _, err := NewWinningNumbers(numbers); !errors.Is(err, ErrInvalidWinningNumbers) {
			t.Fatalf("numbers %v: expected ErrInvalidWinningNumbers, got %v", numbers, err)
		}
	}
}

func TestWinningNumbers_Matches(t *testing.T) {
	win := WinningNumbers{3, 7, 12}
	if !win.Matches([]int{1, 3, 5, 7, 12}) {
		t.Fatalf("expected board containing all winning numbers to match")
	}
	if win.Matches([]int{1, 3, 5, 7, 9}) {
		t.Fatalf("expected board missing 12 not to match")
	}
	if (WinningNumbers{}).Matches([]int{1, 2, 3, 4, 5}) {
		t.Fatalf("unset winning numbers never match")
	}
}

func TestWeek_Transitions(t *testing.T) {
	now := time.Date(2025, 12, 20, 18, 0, 0, 0, time.UTC)
	w := Week{ID: 1, WeekStart: time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), Status: StatusActive}

	w.Close(WinningNumbers{3, 7, 12}, now)
	if !w.IsClosed() || w.PublishedAt == nil || !w.WinningNumbers.IsSet() {
		t.Fatalf("expected closed week with numbers, got %+v", w)
	}

	w.Reopen(now.Add(time.Hour))
	if !w.IsActive() || w.PublishedAt != nil || w.WinningNumbers != nil {
		t.Fatalf("expected reopened week without numbers, got %+v", w)
	}

	w.Retract(now)
	if w.IsActive() || !w.Deleted {
		t.Fatalf("expected retracted week to be deleted and not active, got %+v", w)
	}

	w.Activate(now)
	if !w.IsActive() {
		t.Fatalf("expected activate to undelete, got %+v", w)
	}
}

func TestWeek_ValidateBasic(t *testing.T) {
	w := Week{WeekStart: time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC), Status: StatusActive}
	if err := w.ValidateBasic(); err == nil {
		t.Fatalf("expected tuesday week start to fail")
	}

	w.WeekStart = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	if err := w.ValidateBasic(); err != nil {
		t.Fatalf("expected valid week, got %v", err)
	}

	w.Status = "archived"
	if err := w.ValidateBasic(); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
}
