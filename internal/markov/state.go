// Package markov implements the four-state heart-failure cohort model:
// transition-matrix assembly, stochastic validation, and monthly cohort
// propagation with discounting and inflation indexing.
package markov

// State identifies one of the model's health states. The order is fixed and
// shared by every vector and matrix in the engine.
type State int

const (
	// NYHA12 is the community state for mild heart failure (NYHA class I/II).
	NYHA12 State = iota
	// NYHA34 is the community state for severe heart failure (NYHA class III/IV).
	NYHA34
	// Hospital is the inpatient state following a (re)admission.
	Hospital
	// Dead is the absorbing state.
	Dead
)

// NumStates is the dimension of every state vector and transition matrix.
const NumStates = 4

// String returns the analyst-facing state label.
func (s State) String() string {
	switch s {
	case NYHA12:
		return "NYHA12"
	case NYHA34:
		return "NYHA34"
	case Hospital:
		return "Hospital"
	case Dead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// Vector is a per-state quantity (counts, monthly costs, monthly QALYs)
// indexed by State.
type Vector [NumStates]float64

// Total returns the sum of all components.
func (v Vector) Total() float64 {
	var t float64
	for _, x := range v {
		t += x
	}
	return t
}
