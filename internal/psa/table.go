// Package psa runs the probabilistic sensitivity analysis: it repeats the
// sample-build-simulate cycle over both arms, accumulates the monthly
// results in columnar tables, and derives per-repeat delta outcomes.
package psa

import (
	"fmt"

	"github.com/cardecon/hfpsa/internal/markov"
	"github.com/cardecon/hfpsa/internal/platform/errors"
)

// ArmTable holds every monthly record of one arm across all repeats in
// columnar buffers. Buffers are pre-sized to repeats*horizon rows and
// populated by index, so workers running disjoint repeats write disjoint
// ranges and need no locking.
type ArmTable struct {
	repeats int
	horizon int

	RepeatID []int
	Month    []int

	Counts      [markov.NumStates][]float64
	QALYByState [markov.NumStates][]float64
	CostByState [markov.NumStates][]float64

	QALYTotal []float64
	CostTotal []float64
	QALYDisc  []float64
	CostDisc  []float64
}

// NewArmTable allocates a table for repeats*horizon monthly rows.
func NewArmTable(repeats, horizon int) (*ArmTable, error) {
	if repeats <= 0 || horizon <= 0 {
		return nil, errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("table dimensions must be positive, got repeats=%d horizon=%d", repeats, horizon))
	}

	n := repeats * horizon
	t := &ArmTable{
		repeats:   repeats,
		horizon:   horizon,
		RepeatID:  make([]int, n),
		Month:     make([]int, n),
		QALYTotal: make([]float64, n),
		CostTotal: make([]float64, n),
		QALYDisc:  make([]float64, n),
		CostDisc:  make([]float64, n),
	}
	for s := 0; s < markov.NumStates; s++ {
		t.Counts[s] = make([]float64, n)
		t.QALYByState[s] = make([]float64, n)
		t.CostByState[s] = make([]float64, n)
	}
	return t, nil
}

// Len returns the number of rows.
func (t *ArmTable) Len() int { return len(t.Month) }

// Repeats returns the number of repeats the table was sized for.
func (t *ArmTable) Repeats() int { return t.repeats }

// Horizon returns the number of months per repeat.
func (t *ArmTable) Horizon() int { return t.horizon }

// SetRepeat writes one repeat's monthly outcomes into the repeat's row
// range. The slice must have exactly horizon entries.
func (t *ArmTable) SetRepeat(repeat int, months []markov.MonthOutcome) error {
	if repeat < 0 || repeat >= t.repeats {
		return errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("repeat %d outside table range [0, %d)", repeat, t.repeats))
	}
	if len(months) != t.horizon {
		return errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("repeat %d has %d monthly records, table expects %d", repeat, len(months), t.horizon))
	}

	base := repeat * t.horizon
	for i, rec := range months {
		row := base + i
		t.RepeatID[row] = repeat
		t.Month[row] = rec.Month
		for s := 0; s < markov.NumStates; s++ {
			t.Counts[s][row] = rec.Counts[s]
			t.QALYByState[s][row] = rec.QALYByState[s]
			t.CostByState[s][row] = rec.CostByState[s]
		}
		t.QALYTotal[row] = rec.QALYTotal
		t.CostTotal[row] = rec.CostTotal
		t.QALYDisc[row] = rec.QALYDiscounted
		t.CostDisc[row] = rec.CostDiscounted
	}
	return nil
}

// RepeatRows returns the half-open row range [start, end) of one repeat.
func (t *ArmTable) RepeatRows(repeat int) (start, end int) {
	start = repeat * t.horizon
	return start, start + t.horizon
}
