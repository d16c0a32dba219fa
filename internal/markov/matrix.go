package markov

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cardecon/hfpsa/internal/platform/errors"
)

// RowSumTolerance is the maximum deviation from 1 a row sum may carry
// before the matrix is rejected as non-stochastic.
const RowSumTolerance = 1e-9

// Transitions holds the six sampled monthly transition probabilities for
// one arm. The remaining probability mass per row is residual: staying put
// for the two community states, discharge to NYHA12 for the hospital state.
type Transitions struct {
	MildToHospital   float64 // NYHA12 readmission
	MildToDead       float64 // NYHA12 mortality
	SevereToHospital float64 // NYHA34 readmission
	SevereToDead     float64 // NYHA34 mortality
	HospitalToSevere float64 // discharge in NYHA III/IV
	HospitalToDead   float64 // in-hospital mortality
}

// BuildMatrix assembles the row-stochastic transition matrix for one arm.
//
// Rows and columns follow the State order. The Dead row is the fixed
// absorbing identity row. Residual probabilities are computed as one minus
// the sampled outgoing mass; a negative residual means the sampled edges of
// that row exceed 1 and the parameterization is inconsistent, which is an
// error rather than something to clamp.
func BuildMatrix(tr Transitions) (*mat.Dense, error) {
	stayMild := 1 - tr.MildToHospital - tr.MildToDead
	staySevere := 1 - tr.SevereToHospital - tr.SevereToDead
	dischargeMild := 1 - tr.HospitalToSevere - tr.HospitalToDead

	residuals := []struct {
		state    State
		residual float64
	}{
		{NYHA12, stayMild},
		{NYHA34, staySevere},
		{Hospital, dischargeMild},
	}
	for _, r := range residuals {
		state, residual := r.state, r.residual
		if residual < 0 {
			return nil, errors.WithMetadata(errors.CodeParamResidualNegative,
				fmt.Sprintf("residual probability for %s is %g", state, residual),
				map[string]string{"state": state.String(), "residual": fmt.Sprintf("%g", residual)})
		}
	}

	m := mat.NewDense(NumStates, NumStates, []float64{
		stayMild, 0, tr.MildToHospital, tr.MildToDead,
		0, staySevere, tr.SevereToHospital, tr.SevereToDead,
		dischargeMild, tr.HospitalToSevere, 0, tr.HospitalToDead,
		0, 0, 0, 1,
	})

	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that m is a well-formed transition matrix: 4x4, every
// entry in [0,1], every row summing to 1 within RowSumTolerance, and the
// Dead row exactly [0,0,0,1].
func Validate(m *mat.Dense) error {
	r, c := m.Dims()
	if r != NumStates || c != NumStates {
		return errors.New(errors.CodeMatrixRowNotStochastic,
			fmt.Sprintf("transition matrix must be %dx%d, got %dx%d", NumStates, NumStates, r, c))
	}

	for i := 0; i < NumStates; i++ {
		sum := 0.0
		for j := 0; j < NumStates; j++ {
			v := m.At(i, j)
			if v < 0 || v > 1 {
				return errors.WithMetadata(errors.CodeMatrixEntryOutOfRange,
					fmt.Sprintf("entry (%s -> %s) = %g is outside [0,1]", State(i), State(j), v),
					map[string]string{"row": State(i).String(), "col": State(j).String()})
			}
			sum += v
		}
		if math.Abs(sum-1) > RowSumTolerance {
			return errors.WithMetadata(errors.CodeMatrixRowNotStochastic,
				fmt.Sprintf("row %s sums to %.12f", State(i), sum),
				map[string]string{"row": State(i).String()})
		}
	}

	for j := 0; j < NumStates; j++ {
		want := 0.0
		if State(j) == Dead {
			want = 1
		}
		if m.At(int(Dead), j) != want {
			return errors.New(errors.CodeMatrixRowNotStochastic,
				fmt.Sprintf("dead row entry %s = %g, want %g", State(j), m.At(int(Dead), j), want))
		}
	}

	return nil
}
