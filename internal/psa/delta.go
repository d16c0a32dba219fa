package psa

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cardecon/hfpsa/internal/markov"
	"github.com/cardecon/hfpsa/internal/platform/errors"
)

// ArmOutcome summarises one arm of one repeat, per capita.
type ArmOutcome struct {
	// Cost and QALY are discounted lifetime totals per cohort member.
	Cost float64
	QALY float64
	// Survival is the fraction of potential person-time spent alive:
	// 1 - dead person-months / (cohort size * horizon).
	Survival float64
	// MonthsMild, MonthsSevere, and MonthsHospital are cumulative
	// person-months per cohort member spent in each live state.
	MonthsMild     float64
	MonthsSevere   float64
	MonthsHospital float64
}

// DeltaRecord is the per-repeat comparison of the two arms.
type DeltaRecord struct {
	RepeatID     int
	Control      ArmOutcome
	Intervention ArmOutcome
	// DCost and DQALY are intervention minus control, per capita.
	DCost float64
	DQALY float64
	// NMB is the net monetary benefit WTP*DQALY - DCost.
	NMB float64
}

// ComputeDeltas reduces the two accumulated arm tables to one DeltaRecord
// per repeat at the given willingness-to-pay per QALY.
func ComputeDeltas(res *Results, wtp float64) ([]DeltaRecord, error) {
	if res == nil || res.Control == nil || res.Intervention == nil {
		return nil, errors.New(errors.CodeConfigInvalid, "results with both arm tables are required")
	}
	if res.Control.Repeats() != res.Intervention.Repeats() || res.Control.Horizon() != res.Intervention.Horizon() {
		return nil, errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("arm tables disagree on shape: control %dx%d, intervention %dx%d",
				res.Control.Repeats(), res.Control.Horizon(),
				res.Intervention.Repeats(), res.Intervention.Horizon()))
	}
	if wtp < 0 {
		return nil, errors.New(errors.CodeConfigInvalid, fmt.Sprintf("willingness to pay must not be negative, got %g", wtp))
	}

	repeats := res.Control.Repeats()
	cohort := res.Config.CohortSize
	horizon := res.Config.HorizonMonths

	deltas := make([]DeltaRecord, repeats)
	for r := 0; r < repeats; r++ {
		control := summariseArm(res.Control, r, cohort, horizon)
		intervention := summariseArm(res.Intervention, r, cohort, horizon)

		rec := DeltaRecord{
			RepeatID:     r,
			Control:      control,
			Intervention: intervention,
			DCost:        intervention.Cost - control.Cost,
			DQALY:        intervention.QALY - control.QALY,
		}
		rec.NMB = wtp*rec.DQALY - rec.DCost
		deltas[r] = rec
	}
	return deltas, nil
}

// summariseArm folds one repeat's monthly rows into per-capita outcomes.
func summariseArm(t *ArmTable, repeat int, cohort float64, horizon int) ArmOutcome {
	start, end := t.RepeatRows(repeat)

	out := ArmOutcome{
		Cost:           floats.Sum(t.CostDisc[start:end]) / cohort,
		QALY:           floats.Sum(t.QALYDisc[start:end]) / cohort,
		MonthsMild:     floats.Sum(t.Counts[markov.NYHA12][start:end]) / cohort,
		MonthsSevere:   floats.Sum(t.Counts[markov.NYHA34][start:end]) / cohort,
		MonthsHospital: floats.Sum(t.Counts[markov.Hospital][start:end]) / cohort,
	}
	deadMonths := floats.Sum(t.Counts[markov.Dead][start:end])
	out.Survival = 1 - deadMonths/(cohort*float64(horizon))
	return out
}

// Summary aggregates a delta table for reporting.
type Summary struct {
	MeanDCost float64
	StdDCost  float64
	MeanDQALY float64
	StdDQALY  float64
	MeanNMB   float64
	// ProbCostEffective is the fraction of repeats with positive NMB.
	ProbCostEffective float64
}

// Summarise computes distributional summaries over the per-repeat deltas.
func Summarise(deltas []DeltaRecord) (Summary, error) {
	if len(deltas) == 0 {
		return Summary{}, errors.New(errors.CodeConfigInvalid, "at least one delta record is required")
	}

	dCost := make([]float64, len(deltas))
	dQALY := make([]float64, len(deltas))
	nmb := make([]float64, len(deltas))
	positive := 0
	for i, d := range deltas {
		dCost[i] = d.DCost
		dQALY[i] = d.DQALY
		nmb[i] = d.NMB
		if d.NMB > 0 {
			positive++
		}
	}

	meanCost, stdCost := stat.MeanStdDev(dCost, nil)
	meanQALY, stdQALY := stat.MeanStdDev(dQALY, nil)

	return Summary{
		MeanDCost:         meanCost,
		StdDCost:          stdCost,
		MeanDQALY:         meanQALY,
		StdDQALY:          stdQALY,
		MeanNMB:           stat.Mean(nmb, nil),
		ProbCostEffective: float64(positive) / float64(len(deltas)),
	}, nil
}
