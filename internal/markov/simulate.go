package markov

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cardecon/hfpsa/internal/platform/errors"
)

// ArmInputs bundles the per-arm inputs of one simulated cohort: the
// transition matrix and the monthly per-state QALY and cost vectors. The
// QALY vector is shared between arms by the study design; the cost vector
// is arm-specific.
type ArmInputs struct {
	Matrix *mat.Dense
	QALY   Vector
	Cost   Vector
}

// Discounting holds the time-value adjustments applied to monthly totals.
// All three are annual multipliers (1.03 means 3% per year) and must be
// positive. Months are 0-based, so month 0 carries no adjustment at all.
type Discounting struct {
	Cost      float64
	QALY      float64
	Inflation float64
}

// MonthOutcome is the post-transition record for a single month.
type MonthOutcome struct {
	Month       int
	Counts      Vector
	QALYByState Vector
	CostByState Vector
	QALYTotal   float64
	CostTotal   float64
	// QALYDiscounted is QALYTotal divided by the QALY discount factor.
	QALYDiscounted float64
	// CostDiscounted is CostTotal indexed by inflation, divided by the cost
	// discount factor, and rounded to monetary precision (2 decimals).
	CostDiscounted float64
}

// Simulate propagates the initial cohort through horizon monthly cycles.
//
// Each month the cohort row vector is multiplied by the transition matrix,
// per-state QALY and cost contributions are accrued from the
// post-transition counts, and totals are discounted. The Dead entries of
// both accrual vectors must be zero so the absorbing state earns nothing.
// The returned slice has exactly horizon entries; cross-month aggregation
// is left to the caller.
func Simulate(arm ArmInputs, initial Vector, horizon int, disc Discounting) ([]MonthOutcome, error) {
	if horizon <= 0 {
		return nil, errors.New(errors.CodeConfigInvalid, fmt.Sprintf("horizon must be positive, got %d", horizon))
	}
	if disc.Cost <= 0 || disc.QALY <= 0 || disc.Inflation <= 0 {
		return nil, errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("discount and inflation multipliers must be positive, got cost=%g qaly=%g inflation=%g",
				disc.Cost, disc.QALY, disc.Inflation))
	}
	if arm.QALY[Dead] != 0 || arm.Cost[Dead] != 0 {
		return nil, errors.New(errors.CodeConfigInvalid, "dead-state QALY and cost must be zero")
	}
	if err := Validate(arm.Matrix); err != nil {
		return nil, err
	}

	state := mat.NewDense(1, NumStates, []float64{initial[NYHA12], initial[NYHA34], initial[Hospital], initial[Dead]})
	next := mat.NewDense(1, NumStates, nil)

	out := make([]MonthOutcome, horizon)
	for month := 0; month < horizon; month++ {
		next.Mul(state, arm.Matrix)
		state.Copy(next)

		rec := MonthOutcome{Month: month}
		for s := 0; s < NumStates; s++ {
			count := state.At(0, s)
			rec.Counts[s] = count
			rec.QALYByState[s] = count * arm.QALY[s]
			rec.CostByState[s] = count * arm.Cost[s]
			rec.QALYTotal += rec.QALYByState[s]
			rec.CostTotal += rec.CostByState[s]
		}

		years := float64(month) / 12
		inflationAdj := math.Pow(disc.Inflation, years)
		rec.QALYDiscounted = rec.QALYTotal / math.Pow(disc.QALY, years)
		rec.CostDiscounted = roundCents(rec.CostTotal * inflationAdj / math.Pow(disc.Cost, years))

		out[month] = rec
	}

	return out, nil
}

// roundCents rounds to 2 decimal places, the model's monetary precision.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
