package psa

import (
	"testing"

	"github.com/cardecon/hfpsa/internal/markov"
)

func TestNewArmTableRejectsBadDimensions(t *testing.T) {
	tests := []struct {
		name             string
		repeats, horizon int
	}{
		{"zero repeats", 0, 60},
		{"negative repeats", -1, 60},
		{"zero horizon", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewArmTable(tt.repeats, tt.horizon); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSetRepeatWritesDisjointRanges(t *testing.T) {
	table, err := NewArmTable(3, 2)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	for r := 0; r < 3; r++ {
		months := []markov.MonthOutcome{
			{Month: 0, CostTotal: float64(100 * r)},
			{Month: 1, CostTotal: float64(100*r + 1)},
		}
		if err := table.SetRepeat(r, months); err != nil {
			t.Fatalf("set repeat %d: %v", r, err)
		}
	}

	if table.Len() != 6 {
		t.Fatalf("expected 6 rows, got %d", table.Len())
	}
	for r := 0; r < 3; r++ {
		start, end := table.RepeatRows(r)
		if end-start != 2 {
			t.Fatalf("repeat %d range [%d, %d), want width 2", r, start, end)
		}
		for row := start; row < end; row++ {
			if table.RepeatID[row] != r {
				t.Fatalf("row %d tagged repeat %d, want %d", row, table.RepeatID[row], r)
			}
		}
		if table.CostTotal[start] != float64(100*r) {
			t.Fatalf("repeat %d month 0 cost %g, want %d", r, table.CostTotal[start], 100*r)
		}
	}
}

func TestSetRepeatRejectsShapeMismatch(t *testing.T) {
	table, err := NewArmTable(2, 3)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	if err := table.SetRepeat(0, make([]markov.MonthOutcome, 2)); err == nil {
		t.Fatal("expected error for short month slice")
	}
	if err := table.SetRepeat(5, make([]markov.MonthOutcome, 3)); err == nil {
		t.Fatal("expected error for repeat out of range")
	}
}
