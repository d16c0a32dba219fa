// Package errors provides structured, coded error handling for the
// simulation engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Parameterization errors
	CodeParamBoundsInvalid    Code = "PARAM_BOUNDS_INVALID"
	CodeParamResidualNegative Code = "PARAM_RESIDUAL_NEGATIVE"

	// Matrix assembly errors
	CodeMatrixRowNotStochastic Code = "MATRIX_ROW_NOT_STOCHASTIC"
	CodeMatrixEntryOutOfRange  Code = "MATRIX_ENTRY_OUT_OF_RANGE"

	// Run configuration errors
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// Result storage errors
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)
