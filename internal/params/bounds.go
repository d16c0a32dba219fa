// Package params samples the uncertain model inputs of the PSA: transition
// probabilities, relative-risk multipliers, per-state monthly QALYs, and
// per-state monthly costs. All draws are uniform within literature bounds
// and flow from an explicit random source so repeats stay independent and
// reproducible.
package params

import "github.com/cardecon/hfpsa/internal/markov"

// Bounds is a closed uniform sampling interval.
type Bounds struct {
	Min float64
	Max float64
}

// Model cycle and relative-risk measurement periods, in months. The
// transition probabilities are monthly; the readmission RR comes from a
// six-month trial follow-up and the mortality RR from a twelve-month one,
// so both are period-converted before they touch monthly bounds.
const (
	CycleMonths         = 1
	RRReadmissionMonths = 6
	RRMortalityMonths   = 12
)

// Relative-risk multipliers of the telemonitoring intervention versus
// usual care.
var (
	RRReadmissionBounds = Bounds{0.53, 0.78}
	RRMortalityBounds   = Bounds{0.68, 0.90}
)

// Monthly transition-probability bounds for the control arm.
var (
	MildToHospitalBounds   = Bounds{0.021, 0.046}
	MildToDeadBounds       = Bounds{0.004, 0.011}
	SevereToHospitalBounds = Bounds{0.057, 0.103}
	SevereToDeadBounds     = Bounds{0.014, 0.028}
	HospitalToSevereBounds = Bounds{0.18, 0.34}
	HospitalToDeadBounds   = Bounds{0.048, 0.092}
)

// Monthly QALY bounds per state (annual utilities divided by twelve).
// Shared between arms; the Dead state earns nothing.
var qalyBounds = [markov.NumStates]Bounds{
	markov.NYHA12:   {0.0692, 0.0742},
	markov.NYHA34:   {0.0442, 0.0608},
	markov.Hospital: {0.0292, 0.0442},
	markov.Dead:     {0, 0},
}

// Monthly follow-up cost bounds per arm (EUR, PricingYear prices). The
// intervention bounds include the telemonitoring service fee. Hospital
// cost is a fixed per-month tariff rather than a sampled range, identical
// in both arms.
const (
	PricingYear         = 2014
	HospitalMonthlyCost = 3360.0
)

var (
	controlCostBounds = [markov.NumStates]Bounds{
		markov.NYHA12: {118, 232},
		markov.NYHA34: {205, 401},
	}
	interventionCostBounds = [markov.NumStates]Bounds{
		markov.NYHA12: {176, 294},
		markov.NYHA34: {263, 463},
	}
)
