package params

import (
	"fmt"
	"math"

	"github.com/cardecon/hfpsa/internal/platform/errors"
)

// AdjustedRisk converts a control-arm event probability p, measured over
// refMonths, into the equivalent intervention-arm probability over the same
// refMonths, given a relative risk rr measured over rrMonths.
//
// When the two periods match the result is simply p*rr. Otherwise p is
// first re-expressed over the RR's period with the compound-probability
// identity p' = 1-(1-p)^(rrMonths/refMonths), the relative risk is applied,
// and the result is converted back through the inverse identity.
//
// Certain rr/p combinations push the intermediate probability p'*rr above
// 1, which would make the event-free complement negative and the final
// exponentiation meaningless. That signals inconsistent literature inputs
// and is returned as a PARAM_BOUNDS_INVALID error instead of a NaN.
func AdjustedRisk(p, rr, rrMonths, refMonths float64) (float64, error) {
	if p < 0 || p > 1 {
		return 0, errors.New(errors.CodeParamBoundsInvalid,
			fmt.Sprintf("probability %g is outside [0,1]", p))
	}
	if rr < 0 {
		return 0, errors.New(errors.CodeParamBoundsInvalid,
			fmt.Sprintf("relative risk %g is negative", rr))
	}
	if rrMonths <= 0 || refMonths <= 0 {
		return 0, errors.New(errors.CodeParamBoundsInvalid,
			fmt.Sprintf("period lengths must be positive, got rr=%g ref=%g", rrMonths, refMonths))
	}

	if rr == 1 {
		return p, nil
	}

	if rrMonths == refMonths {
		adjusted := p * rr
		if adjusted > 1 {
			return 0, errors.New(errors.CodeParamBoundsInvalid,
				fmt.Sprintf("adjusted probability %g exceeds 1 (p=%g rr=%g)", adjusted, p, rr))
		}
		return adjusted, nil
	}

	ratio := rrMonths / refMonths
	survival := math.Pow(1-p, ratio)

	// Accumulating the event-free mass as survival plus the spared events
	// keeps the subtraction away from 1, where 1-(1-survival)*rr cancels
	// catastrophically for survival near 0.
	eventFree := survival + (1-rr)*(1-survival)
	if eventFree < 0 {
		return 0, errors.WithMetadata(errors.CodeParamBoundsInvalid,
			fmt.Sprintf("intermediate probability %g exceeds 1 (p=%g rr=%g over %g months)",
				(1-survival)*rr, p, rr, rrMonths),
			map[string]string{"p": fmt.Sprintf("%g", p), "rr": fmt.Sprintf("%g", rr)})
	}

	adjusted := 1 - math.Pow(eventFree, 1/ratio)
	if adjusted < 0 || adjusted > 1 {
		return 0, errors.New(errors.CodeParamBoundsInvalid,
			fmt.Sprintf("adjusted probability %g is outside [0,1]", adjusted))
	}
	return adjusted, nil
}
