package params

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cardecon/hfpsa/internal/markov"
	"github.com/cardecon/hfpsa/internal/platform/errors"
)

// Set is one repeat's complete parameterization: monthly transition
// probabilities per arm, the relative risks actually drawn, the shared
// per-state monthly QALY vector, and the arm-specific per-state monthly
// cost vectors (already indexed to the reference year).
type Set struct {
	RRReadmission float64
	RRMortality   float64

	Control      markov.Transitions
	Intervention markov.Transitions

	QALY             markov.Vector
	ControlCost      markov.Vector
	InterventionCost markov.Vector
}

// Sampler draws parameter sets from an explicit random source. One sampler
// serves one repeat; workers running repeats in parallel each construct
// their own from an independently derived source.
type Sampler struct {
	src rand.Source

	// costScale re-indexes PricingYear bounds to the reference year.
	costScale float64
}

// NewSampler builds a sampler whose cost bounds are inflated from
// PricingYear to referenceYear with the given annual inflation multiplier.
func NewSampler(src rand.Source, inflation float64, referenceYear int) (*Sampler, error) {
	if src == nil {
		return nil, errors.New(errors.CodeConfigInvalid, "random source is required")
	}
	if inflation <= 0 {
		return nil, errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("inflation multiplier must be positive, got %g", inflation))
	}
	if referenceYear < PricingYear {
		return nil, errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("reference year %d predates pricing year %d", referenceYear, PricingYear))
	}
	return &Sampler{
		src:       src,
		costScale: math.Pow(inflation, float64(referenceYear-PricingYear)),
	}, nil
}

// uniform draws one value from a closed interval. Degenerate intervals
// (fixed point estimates like the Dead-state zeroes) bypass the
// distribution, whose support must be non-empty.
func (s *Sampler) uniform(b Bounds) float64 {
	if b.Min == b.Max {
		return b.Min
	}
	return distuv.Uniform{Min: b.Min, Max: b.Max, Src: s.src}.Rand()
}

// Draw produces one parameter set.
//
// The draw order is fixed (relative risks, control transitions,
// intervention transitions, QALYs, costs) because the random stream is
// shared across all draws of the repeat; reordering would silently change
// every reproduced result.
//
// Intervention transitions subject to a relative risk are drawn uniformly
// between the RR-adjusted control bounds. The two in-hospital edges
// (discharge in NYHA III/IV and in-hospital death) carry no intervention
// effect, so the control draw is reused rather than resampled.
func (s *Sampler) Draw() (Set, error) {
	set := Set{
		RRReadmission: s.uniform(RRReadmissionBounds),
		RRMortality:   s.uniform(RRMortalityBounds),
	}

	set.Control = markov.Transitions{
		MildToHospital:   s.uniform(MildToHospitalBounds),
		MildToDead:       s.uniform(MildToDeadBounds),
		SevereToHospital: s.uniform(SevereToHospitalBounds),
		SevereToDead:     s.uniform(SevereToDeadBounds),
		HospitalToSevere: s.uniform(HospitalToSevereBounds),
		HospitalToDead:   s.uniform(HospitalToDeadBounds),
	}

	mildToHospital, err := s.adjustedUniform(MildToHospitalBounds, set.RRReadmission, RRReadmissionMonths)
	if err != nil {
		return Set{}, err
	}
	mildToDead, err := s.adjustedUniform(MildToDeadBounds, set.RRMortality, RRMortalityMonths)
	if err != nil {
		return Set{}, err
	}
	severeToHospital, err := s.adjustedUniform(SevereToHospitalBounds, set.RRReadmission, RRReadmissionMonths)
	if err != nil {
		return Set{}, err
	}
	severeToDead, err := s.adjustedUniform(SevereToDeadBounds, set.RRMortality, RRMortalityMonths)
	if err != nil {
		return Set{}, err
	}
	set.Intervention = markov.Transitions{
		MildToHospital:   mildToHospital,
		MildToDead:       mildToDead,
		SevereToHospital: severeToHospital,
		SevereToDead:     severeToDead,
		HospitalToSevere: set.Control.HospitalToSevere,
		HospitalToDead:   set.Control.HospitalToDead,
	}

	for st := 0; st < markov.NumStates; st++ {
		set.QALY[st] = s.uniform(qalyBounds[st])
	}

	set.ControlCost = s.drawCosts(controlCostBounds)
	set.InterventionCost = s.drawCosts(interventionCostBounds)

	return set, nil
}

// adjustedUniform transforms both bounds of a control interval with the
// relative risk and draws uniformly within the transformed interval.
func (s *Sampler) adjustedUniform(b Bounds, rr, rrMonths float64) (float64, error) {
	lo, err := AdjustedRisk(b.Min, rr, rrMonths, CycleMonths)
	if err != nil {
		return 0, err
	}
	hi, err := AdjustedRisk(b.Max, rr, rrMonths, CycleMonths)
	if err != nil {
		return 0, err
	}
	return s.uniform(Bounds{Min: lo, Max: hi}), nil
}

// drawCosts samples the community follow-up costs and fills in the fixed
// hospital tariff, all scaled to the reference year. Dead stays zero.
func (s *Sampler) drawCosts(bounds [markov.NumStates]Bounds) markov.Vector {
	var costs markov.Vector
	for _, st := range []markov.State{markov.NYHA12, markov.NYHA34} {
		b := bounds[st]
		costs[st] = s.uniform(Bounds{Min: b.Min * s.costScale, Max: b.Max * s.costScale})
	}
	costs[markov.Hospital] = HospitalMonthlyCost * s.costScale
	return costs
}
